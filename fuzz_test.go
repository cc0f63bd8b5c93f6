package gfwx

import "testing"

// FuzzDecompress feeds arbitrary bytes through the full decode path: header,
// color-transform program, and payload. The decoder must reject malformed
// input with an error, never a panic.
// Run with: go test -fuzz=FuzzDecompress -fuzztime=60s
func FuzzDecompress(f *testing.F) {
	// Seed with a small valid stream.
	b := NewHeaderBuilder()
	b.Width, b.Height, b.Channels = 8, 8, 1
	h, err := b.Build()
	if err != nil {
		f.Fatal(err)
	}
	src := make([]byte, 8*8)
	for i := range src {
		src[i] = byte(i)
	}
	out := make([]byte, HeaderSize+len(src)*8+1024)
	n, err := Compress(src, h, IdentityColorTransform(), out)
	if err != nil {
		f.Fatal(err)
	}
	f.Add(out[:n])
	f.Add(out[:n/2])
	f.Add(out[:HeaderSize])
	f.Add([]byte{'G', 'F', 'W', 'X'})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		hdr, err := DecodeHeader(data)
		if err != nil {
			return
		}
		// Bound the working-set size so the fuzzer explores the decode
		// logic instead of allocator limits.
		if uint64(hdr.Width)*uint64(hdr.Height)*uint64(hdr.Channels)*uint64(hdr.Layers) > 1<<20 {
			return
		}
		dst := make([]byte, int(hdr.Width)*int(hdr.Height)*int(hdr.Channels)*int(hdr.Layers))
		_, _, _ = Decompress(data, 0, false, dst)
	})
}
