package entropy

import "github.com/gfwx-project/gfwx/internal/chunk"

// addContext folds one neighbor sample into the running weighted sum,
// sum-of-squares, and weight total a context estimate is built from.
// Squares are clamped at 4096² before weighting so a single outlier
// neighbor cannot dominate the estimate.
func addContext(x int32, w uint32, sum, sum2, count *uint32) {
	ax := uint32(x)
	if x < 0 {
		ax = uint32(-x)
	}
	*sum += ax * w
	clamped := ax
	if clamped > 4096 {
		clamped = 4096
	}
	*sum2 += square(clamped) * w
	*count += w
}

// getContext estimates the local magnitude (context[0]) and its second
// moment (context[1]) at local chunk position (x, y) from already-decoded
// neighbor samples: the coarser-level ancestor directly above it in the
// lifting hierarchy, its siblings at the same level, and the two rings of
// same-level neighbors reachable within two and four steps. Every read
// falls on an already-written point, since the coarser levels are always
// processed before finer ones.
func getContext(c *chunk.Chunk, x, y int32) [2]uint32 {
	skip := int32(c.Step)
	x0, x1 := int32(c.XRange[0]), int32(c.XRange[1])
	y0, y1 := int32(c.YRange[0]), int32(c.YRange[1])

	px := x0 + (x &^ (skip * 2)) + (x & skip)
	if px >= x1 {
		px -= skip * 2
	}
	py := y0 + (y &^ (skip * 2)) + (y & skip)
	if py >= y1 {
		py -= skip * 2
	}

	var sum, sum2, count uint32

	addContext(c.Get(int(py), int(px)), 2, &sum, &sum2, &count) // ancestor

	if (y&skip) != 0 && (x|skip) < (x1-x0) {
		addContext(c.Get(int(y0+y-skip), int(x0+(x|skip))), 2, &sum, &sum2, &count) // upper sibling
		if (x & skip) != 0 {
			addContext(c.Get(int(y0+y), int(x0+x-skip)), 2, &sum, &sum2, &count) // left sibling
		}
	}

	if y >= skip*2 && x >= skip*2 {
		near := [3]struct {
			py, px int32
			w      uint32
		}{
			{y0 + y - skip*2, x0 + x, 4},
			{y0 + y, x0 + x - skip*2, 4},
			{y0 + y - skip*2, x0 + x - skip*2, 2},
		}
		for _, p := range near {
			addContext(c.Get(int(p.py), int(p.px)), p.w, &sum, &sum2, &count)
		}
		if x+skip*2 < x1-x0 {
			addContext(c.Get(int(y0+y-skip*2), int(x0+x+skip*2)), 2, &sum, &sum2, &count)
		}

		if y >= skip*4 && x >= skip*4 {
			far := [3]struct {
				py, px int32
				w      uint32
			}{
				{y0 + y - skip*4, x0 + x, 2},
				{y0 + y, x0 + x - skip*4, 2},
				{y0 + y - skip*4, x0 + x - skip*4, 1},
			}
			for _, p := range far {
				addContext(c.Get(int(p.py), int(p.px)), p.w, &sum, &sum2, &count)
			}
			if x+skip*4 < x1-x0 {
				addContext(c.Get(int(y0+y-skip*4), int(x0+x+skip*4)), 1, &sum, &sum2, &count)
			}
		}
	}

	return [2]uint32{
		(sum*16 + count/2) / count,
		(sum2*16 + count/2) / count,
	}
}

func square(t uint32) uint32 { return t * t }

func absI32(s int32) int32 {
	if s < 0 {
		return -s
	}
	return s
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
