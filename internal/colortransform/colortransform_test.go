package colortransform

import (
	"testing"

	"github.com/gfwx-project/gfwx/internal/bio"
)

func TestCanonicalProgramsEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		program *Program
	}{
		{"identity", Identity()},
		{"yuv444", YUV444ToYUV444()},
		{"rgb_to_yuv", RGBToYUV()},
		{"bgr_to_a710", BGRToA710()},
		{"rgb_to_a710", RGBToA710()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 256)
			isChromaEnc, n, err := tt.program.Encode(buf, 3)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			isChromaDec := make([]bool, 3)
			decoded, _, err := Decode(buf[:n], isChromaDec)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}

			if len(decoded.Transforms) != len(tt.program.Transforms) {
				t.Fatalf("got %d transforms, want %d", len(decoded.Transforms), len(tt.program.Transforms))
			}
			for i, want := range tt.program.Transforms {
				got := decoded.Transforms[i]
				if got.DestChannel != want.DestChannel || got.Denominator != want.Denominator || got.IsChroma != want.IsChroma {
					t.Errorf("transform %d: got %+v want %+v", i, got, want)
				}
				if len(got.Factors) != len(want.Factors) {
					t.Fatalf("transform %d: got %d factors want %d", i, len(got.Factors), len(want.Factors))
				}
				for j := range want.Factors {
					if got.Factors[j] != want.Factors[j] {
						t.Errorf("transform %d factor %d: got %+v want %+v", i, j, got.Factors[j], want.Factors[j])
					}
				}
			}
			for i := range isChromaEnc {
				if isChromaEnc[i] != isChromaDec[i] {
					t.Errorf("channel %d: encode chroma=%v decode chroma=%v", i, isChromaEnc[i], isChromaDec[i])
				}
			}
		})
	}
}

func TestRGBToYUVTransformDetransformRoundTrip(t *testing.T) {
	const channelSize = 4
	const channels = 3
	p := RGBToYUV()
	const boost = int32(8)

	image := []int32{
		10, 20, 30, 40, // R
		50, 60, 70, 80, // G
		15, 25, 35, 45, // B
	}
	aux := make([]int32, channels*channelSize)
	p.Transform(image, channelSize, channels, boost, aux)

	// Detransform, then undo the boost in the check below the way a real
	// decompress pass would (no quantization happens in this test).
	p.Detransform(aux, channelSize)

	for c := 0; c < channels; c++ {
		for i := 0; i < channelSize; i++ {
			got := aux[c*channelSize+i] / boost
			want := image[c*channelSize+i]
			if got != want {
				t.Errorf("channel %d sample %d: got %d want %d", c, i, got, want)
			}
		}
	}
}

// TestProgramEncodeGoldenVector pins the RGB→YUV program's exact wire bytes
// and chroma flags.
func TestProgramEncodeGoldenVector(t *testing.T) {
	want := []byte{
		0xB7, 0x77, 0x55, 0x97, 0xF6, 0x72, 0x77, 0x55,
		0x00, 0x80, 0x32, 0xE9,
	}

	buf := make([]byte, 64)
	isChroma, n, err := RGBToYUV().Encode(buf, 3)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if n != len(want) {
		t.Fatalf("encoded %d bytes, want %d", n, len(want))
	}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d: got %#02x want %#02x\nfull got:  % x\nfull want: % x", i, buf[i], want[i], buf[:n], want)
		}
	}

	wantChroma := []bool{true, false, true}
	for i := range wantChroma {
		if isChroma[i] != wantChroma[i] {
			t.Fatalf("channel %d: chroma flag %v, want %v", i, isChroma[i], wantChroma[i])
		}
	}

	decChroma := make([]bool, 3)
	decoded, consumed, err := Decode(want, decChroma)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if consumed != len(want) {
		t.Fatalf("Decode consumed %d bytes, want %d", consumed, len(want))
	}
	ref := RGBToYUV()
	if len(decoded.Transforms) != len(ref.Transforms) {
		t.Fatalf("decoded %d transforms, want %d", len(decoded.Transforms), len(ref.Transforms))
	}
	for i := range decChroma {
		if decChroma[i] != wantChroma[i] {
			t.Fatalf("decoded channel %d: chroma flag %v, want %v", i, decChroma[i], wantChroma[i])
		}
	}
}

func TestDecodeRejectsZeroDenominator(t *testing.T) {
	// Hand-encode dest=0, factor terminator, denominator=0, chroma 0,
	// program terminator: the reader must refuse the zero denominator.
	buf := make([]byte, 64)
	w := bio.NewWriter(buf)
	for _, v := range []int32{0, -1, 0, 0, -1} {
		if err := bio.SignedCode(w, v, 2); err != nil {
			t.Fatalf("SignedCode(%d): %v", v, err)
		}
	}
	if err := w.FlushWord(); err != nil {
		t.Fatalf("FlushWord: %v", err)
	}

	if _, _, err := Decode(w.Bytes(), make([]bool, 1)); err == nil {
		t.Fatal("expected an error for a zero denominator")
	}
}

func TestDecodeRejectsOutOfRangeDestChannel(t *testing.T) {
	buf := make([]byte, 64)
	w := bio.NewWriter(buf)
	for _, v := range []int32{5, -1, 1, 0, -1} {
		if err := bio.SignedCode(w, v, 2); err != nil {
			t.Fatalf("SignedCode(%d): %v", v, err)
		}
	}
	if err := w.FlushWord(); err != nil {
		t.Fatalf("FlushWord: %v", err)
	}

	if _, _, err := Decode(w.Bytes(), make([]bool, 3)); err == nil {
		t.Fatal("expected an error for a destination channel past the image's channel count")
	}
}

// TestFiveTransformChainRoundTrip builds a program whose later transforms
// read earlier ones' destination channels, so the inverse is only correct
// when applied in reverse order.
func TestFiveTransformChainRoundTrip(t *testing.T) {
	const channelSize = 6
	const channels = 5
	const boost = int32(8)

	p := &Program{}
	p.Add(NewBuilder(0).AddFactor(1, -1).Chroma().Build())
	p.Add(NewBuilder(2).AddFactor(0, 1).AddFactor(1, -2).Denominator(2).Chroma().Build())
	p.Add(NewBuilder(1).AddFactor(0, 1).AddFactor(2, 1).Denominator(4).Build())
	p.Add(NewBuilder(3).AddFactor(1, -1).AddFactor(2, 1).Denominator(2).Chroma().Build())
	p.Add(NewBuilder(4).AddFactor(3, 2).AddFactor(0, -1).Denominator(8).Build())

	image := make([]int32, channels*channelSize)
	for i := range image {
		image[i] = int32((i*11)%200) + 3
	}

	aux := make([]int32, channels*channelSize)
	p.Transform(image, channelSize, channels, boost, aux)
	p.Detransform(aux, channelSize)

	for c := 0; c < channels; c++ {
		for i := 0; i < channelSize; i++ {
			got := aux[c*channelSize+i] / boost
			want := image[c*channelSize+i]
			if got != want {
				t.Errorf("channel %d sample %d: got %d want %d", c, i, got, want)
			}
		}
	}

	// The wire round trip must preserve the order the inverse depends on.
	buf := make([]byte, 256)
	_, n, err := p.Encode(buf, channels)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, _, err := Decode(buf[:n], make([]bool, channels))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, want := range p.Transforms {
		if decoded.Transforms[i].DestChannel != want.DestChannel {
			t.Fatalf("transform %d decoded out of order: dest %d, want %d",
				i, decoded.Transforms[i].DestChannel, want.DestChannel)
		}
	}
}
