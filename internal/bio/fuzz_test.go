package bio

import "testing"

// FuzzUnsignedCodeRoundTrip checks the Golomb-Rice round-trip invariant over
// the full value range and every starting pot.
func FuzzUnsignedCodeRoundTrip(f *testing.F) {
	f.Add(uint32(0), uint8(0))
	f.Add(uint32(11), uint8(1))
	f.Add(uint32(12), uint8(0))
	f.Add(^uint32(0), uint8(24))

	f.Fuzz(func(t *testing.T, x uint32, pot uint8) {
		p := uint32(pot % 25)
		buf := make([]byte, 128)
		w := NewWriter(buf)
		if err := UnsignedCode(w, x, p); err != nil {
			t.Fatalf("UnsignedCode(%d, %d): %v", x, p, err)
		}
		if err := w.FlushWord(); err != nil {
			t.Fatalf("FlushWord: %v", err)
		}

		r := NewReader(w.Bytes())
		got, err := UnsignedDecode(r, p)
		if err != nil {
			t.Fatalf("UnsignedDecode(pot=%d): %v", p, err)
		}
		if got != x {
			t.Fatalf("round trip: got %d want %d (pot=%d)", got, x, p)
		}
	})
}

// FuzzReaderNoPanic drains arbitrary bytes through the reader primitives;
// every call either succeeds or returns an error (ErrBufferExhausted, or
// ErrMalformedCode from UnsignedDecode), never panics.
func FuzzReaderNoPanic(f *testing.F) {
	f.Add([]byte{}, uint8(1))
	f.Add([]byte{0, 0, 0, 0}, uint8(12))
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00}, uint8(31))

	f.Fuzz(func(t *testing.T, data []byte, width uint8) {
		r := NewReader(data)
		bits := uint32(width%32 + 1)
		for {
			if _, err := r.GetBits(bits); err != nil {
				break
			}
			if _, err := r.GetZeros(12); err != nil {
				break
			}
			if _, err := UnsignedDecode(r, bits%25); err != nil {
				break
			}
		}
	})
}
