package dwt

import "testing"

func testFactors() Factors {
	return Factors{
		LinearHorizontal: 128 * 128,
		LinearVertical:   128 * 128,
		CubicHorizontal:  64 * 64,
		CubicVertical:    64 * 64,
	}
}

func makeRamp(width, height int) []int32 {
	plane := make([]int32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			plane[y*width+x] = int32(x + y*3 - 7)
		}
	}
	return plane
}

func TestForwardInverseRoundTrip(t *testing.T) {
	sizes := []struct{ w, h int }{
		{1, 1}, {2, 1}, {1, 2}, {3, 5}, {16, 16}, {17, 13}, {64, 64},
	}

	for _, filter := range []Filter{FilterLinear, FilterCubic} {
		for _, sz := range sizes {
			t.Run(filterName(filter), func(t *testing.T) {
				original := makeRamp(sz.w, sz.h)
				plane := append([]int32(nil), original...)

				Forward2D(plane, sz.w, sz.h, filter, testFactors())
				Inverse2D(plane, sz.w, sz.h, filter, testFactors())

				for i := range plane {
					if plane[i] != original[i] {
						t.Fatalf("%dx%d sample %d: got %d want %d", sz.w, sz.h, i, plane[i], original[i])
					}
				}
			})
		}
	}
}

func filterName(f Filter) string {
	if f == FilterCubic {
		return "cubic"
	}
	return "linear"
}

// TestLinearHorizontalLiftStepOneKnownValues pins the Linear filter's
// horizontal lift to hand-computed values for step=1 on an 8-sample ramp,
// guarding against the update pass misidentifying its starting column (it
// once started at the same column as the predict pass instead of one step
// further in, silently overwriting the first predict coefficient).
func TestLinearHorizontalLiftStepOneKnownValues(t *testing.T) {
	row := []int32{0, 1, 2, 3, 4, 5, 6, 7}
	linearHorizontalLift(row, 1)

	want := []int32{0, 0, 2, 0, 4, 0, 6, 1}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("sample %d: got %d want %d\nfull got:  %v\nfull want: %v", i, row[i], want[i], row, want)
		}
	}
}

func TestForward2DZeroSize(t *testing.T) {
	// Must not panic on a degenerate plane.
	Forward2D(nil, 0, 0, FilterLinear, testFactors())
	Inverse2D(nil, 0, 0, FilterLinear, testFactors())
}

func TestMedian(t *testing.T) {
	tests := []struct{ a, b, c, want int32 }{
		{1, 2, 3, 2},
		{3, 2, 1, 2},
		{5, 5, 5, 5},
		{-1, 0, 1, 0},
	}
	for _, tt := range tests {
		if got := median(tt.a, tt.b, tt.c); got != tt.want {
			t.Errorf("median(%d,%d,%d) = %d, want %d", tt.a, tt.b, tt.c, got, tt.want)
		}
	}
}
