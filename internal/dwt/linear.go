package dwt

// linearHorizontalLiftingBase implements the Linear filter's 2-point
// neighbor-average predictor/update, shared by both horizontal passes.
// c0Start selects the starting column, divider the effective divisor
// (the same -2/4 pair the vertical pass uses).
func linearHorizontalLiftingBase(row []int32, step, c0Start int, divider int32) {
	c0 := row[c0Start]
	x := c0Start + step

	for x+step < len(row) {
		c1 := row[x+step]
		row[x] += (c0 + c1) / divider
		c0 = c1
		x += 2 * step
	}
	if x < len(row) {
		row[x] += (2 * c0) / divider
	}
}

func linearHorizontalLift(row []int32, step int) {
	linearHorizontalLiftingBase(row, step, 0, -2)
	linearHorizontalLiftingBase(row, step, step, 4)
}

func linearHorizontalUnlift(row []int32, step int) {
	linearHorizontalLiftingBase(row, step, step, -4)
	linearHorizontalLiftingBase(row, step, 0, 2)
}

// linearVerticalLiftingBase applies the 2-point neighbor-average
// predictor/update to row i, reading its step-away neighbors. When the row
// has no right neighbor within bounds, the left neighbor stands in for it
// (a boundary mirror, matching the horizontal pass's tail case).
func linearVerticalLiftingBase(rows [][]int32, step, i int, divider int32) {
	left := rows[i-step]
	var right []int32
	if i+step < len(rows) {
		right = rows[i+step]
	} else {
		right = left
	}
	middle := rows[i]

	for x := 0; x < len(middle); x += step {
		middle[x] += (left[x] + right[x]) / divider
	}
}

// linearVerticalLift walks the predict rows (step, 3*step, 5*step, ...)
// then the update rows (2*step, 4*step, ...), each stride 2*step.
func linearVerticalLift(rows [][]int32, step int, parallel bool) {
	runIndexParallel(step, len(rows), 2*step, parallel, func(i int) {
		linearVerticalLiftingBase(rows, step, i, -2)
	})
	runIndexParallel(2*step, len(rows), 2*step, parallel, func(i int) {
		linearVerticalLiftingBase(rows, step, i, 4)
	})
}

func linearVerticalUnlift(rows [][]int32, step int, parallel bool) {
	runIndexParallel(2*step, len(rows), 2*step, parallel, func(i int) {
		linearVerticalLiftingBase(rows, step, i, -4)
	})
	runIndexParallel(step, len(rows), 2*step, parallel, func(i int) {
		linearVerticalLiftingBase(rows, step, i, 2)
	})
}
