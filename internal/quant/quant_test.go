package quant

import "testing"

func TestQuantizeDequantizeLosslessIsNoop(t *testing.T) {
	plane := []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	original := append([]int32(nil), plane...)

	factors := Factors{Quantization: 128 * 128}
	Quantize(plane, 4, 4, 1024, 1, 1024, factors)
	Dequantize(plane, 4, 4, 1024, 1, 1024, factors)

	for i := range plane {
		if plane[i] != original[i] {
			t.Fatalf("sample %d: got %d want %d (lossless quality must be a no-op)", i, plane[i], original[i])
		}
	}
}

func TestQuantizeLowersMagnitude(t *testing.T) {
	plane := make([]int32, 16*16)
	for i := range plane {
		plane[i] = 1000
	}

	factors := Factors{Quantization: 128 * 128}
	Quantize(plane, 16, 16, 64, 1, 1024, factors)

	// Sample 0 (on no level's lattice, so never quantized) is skipped; some
	// other sample must have been changed by quantization.
	shrunk := false
	for i, v := range plane {
		if i == 0 {
			continue
		}
		if v != 1000 {
			shrunk = true
			break
		}
	}
	if !shrunk {
		t.Fatalf("expected quantization to reduce at least one coefficient's magnitude")
	}
}

func TestQuantizeZeroSizeNoPanic(t *testing.T) {
	Quantize(nil, 0, 0, 64, 1, 1024, Factors{Quantization: 1})
	Dequantize(nil, 0, 0, 64, 1, 1024, Factors{Quantization: 1})
}
