// Package dwt implements GFWX's two lifting wavelet transforms — Linear (a
// 5/3-like integer lifting scheme) and Cubic (a 13/7-like scheme using a
// four-tap cubic predictor) — applied in place over a 2-D plane via a
// dyadic step-doubling schedule shared by both filters.
//
// Coefficients live in row-major [][]int32 views so the horizontal pass can
// operate on a single row slice and the vertical pass can address whole
// rows by index, mirroring how the reference lifting scheme is structured.
package dwt

import "sync"

// rowsPool reuses the [][]int32 row-pointer scaffolding between calls
// instead of allocating one per image.
var rowsPool = sync.Pool{
	New: func() any { return make([][]int32, 0, 64) },
}

func getRows(n int) [][]int32 {
	rows := rowsPool.Get().([][]int32)
	if cap(rows) < n {
		rows = make([][]int32, n)
	} else {
		rows = rows[:n]
	}
	return rows
}

func putRows(rows [][]int32) {
	for i := range rows {
		rows[i] = nil
	}
	rowsPool.Put(rows[:0])
}

// planeRows builds the row-view scaffolding over a flat width*height plane.
func planeRows(plane []int32, width, height int) [][]int32 {
	rows := getRows(height)
	for y := 0; y < height; y++ {
		rows[y] = plane[y*width : (y+1)*width]
	}
	return rows
}

// Filter selects which lifting scheme Forward2D/Inverse2D apply.
type Filter int

const (
	FilterLinear Filter = iota
	FilterCubic
)

// Factors carries the multithreading size-hint factors this package needs
// for its horizontal and vertical passes, under each filter. Callers wire these in from
// their own config rather than this package importing the root package,
// which would create an import cycle.
type Factors struct {
	LinearHorizontal int
	LinearVertical   int
	CubicHorizontal  int
	CubicVertical    int
}

// Forward2D applies the forward lifting transform in place to a
// width*height plane using the given filter.
func Forward2D(plane []int32, width, height int, filter Filter, factors Factors) {
	if width == 0 || height == 0 {
		return
	}
	rows := planeRows(plane, width, height)
	defer putRows(rows)

	switch filter {
	case FilterCubic:
		lift(rows, factors.CubicHorizontal, factors.CubicVertical, cubicHorizontalLift, cubicVerticalLift)
	default:
		lift(rows, factors.LinearHorizontal, factors.LinearVertical, linearHorizontalLift, linearVerticalLift)
	}
}

// Inverse2D applies the inverse lifting transform in place to a
// width*height plane using the given filter.
func Inverse2D(plane []int32, width, height int, filter Filter, factors Factors) {
	if width == 0 || height == 0 {
		return
	}
	rows := planeRows(plane, width, height)
	defer putRows(rows)

	switch filter {
	case FilterCubic:
		unlift(rows, factors.CubicHorizontal, factors.CubicVertical, cubicHorizontalUnlift, cubicVerticalUnlift)
	default:
		unlift(rows, factors.LinearHorizontal, factors.LinearVertical, linearHorizontalUnlift, linearVerticalUnlift)
	}
}

type horizontalLiftFunc func(row []int32, step int)
type verticalLiftFunc func(rows [][]int32, step int, parallel bool)

// lift runs the shared dyadic step-doubling schedule: at each step, every
// step-th row is lifted horizontally, then the full set of rows is lifted
// vertically at that step, before step doubles.
func lift(rows [][]int32, hFactor, vFactor int, hLift horizontalLiftFunc, vLift verticalLiftFunc) {
	if len(rows) == 0 {
		return
	}
	width := len(rows[0])
	height := len(rows)

	for step := 1; step < height || step < width; step *= 2 {
		if step < width {
			runRowsParallel(rows, step, height/step*width > hFactor, hLift)
		}
		if step < height {
			vLift(rows, step, height/step*width > vFactor)
		}
	}
}

// unlift runs the step-doubling schedule in reverse: the coarsest step
// first, halving down to 1, undoing each vertical pass before its paired
// horizontal pass (mirroring lift's order within a step).
func unlift(rows [][]int32, hFactor, vFactor int, hUnlift horizontalLiftFunc, vUnlift verticalLiftFunc) {
	if len(rows) == 0 {
		return
	}
	width := len(rows[0])
	height := len(rows)

	step := 1
	for 2*step < height || 2*step < width {
		step *= 2
	}

	for ; step > 0; step /= 2 {
		if step < height {
			vUnlift(rows, step, height/step*width > vFactor)
		}
		if step < width {
			runRowsParallel(rows, step, height/step*width > hFactor, hUnlift)
		}
	}
}

// runRowsParallel applies fn to every step-th row, optionally fanning the
// work out over a worker pool when the row count justifies it.
func runRowsParallel(rows [][]int32, step int, parallel bool, fn horizontalLiftFunc) {
	if !parallel {
		for i := 0; i < len(rows); i += step {
			fn(rows[i], step)
		}
		return
	}

	var wg sync.WaitGroup
	for i := 0; i < len(rows); i += step {
		row := rows[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(row, step)
		}()
	}
	wg.Wait()
}

// runIndexParallel applies fn to every index in [start, limit) stepping by
// stride, optionally fanning the work out over a worker pool. The vertical
// lift passes use this over their predict-row and update-row index sets,
// which are disjoint within a single pass the same way step-th rows are in
// the horizontal pass.
func runIndexParallel(start, limit, stride int, parallel bool, fn func(i int)) {
	if !parallel {
		for i := start; i < limit; i += stride {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	for i := start; i < limit; i += stride {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(i)
		}()
	}
	wg.Wait()
}
