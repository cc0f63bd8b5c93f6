package dwt

// median returns the middle value of three, via a three-compare-swap.
func median(a, b, c int32) int32 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return b
}

// roundFraction rounds num/denom to the nearest integer, rounding ties away
// from zero in the direction num's sign indicates.
func roundFraction(num, denom int32) int32 {
	if num < 0 {
		return (num - denom/2) / denom
	}
	return (num + denom/2) / denom
}

// cubic applies the four-tap cubic predictor to coefficients spaced evenly
// apart, clamping the raw cubic estimate to the range of the two inner taps
// via median to avoid overshoot at sharp edges.
func cubic(c0, c1, c2, c3 int32) int32 {
	return median(roundFraction(-c0+9*(c1+c2)-c3, 16), c1, c2)
}

// cubicHorizontalLiftingBase implements the Cubic filter's four-tap
// predictor/update along a row. c0Start is the column of the first tap,
// c2Mult*step the column of the third; the loop advances the predicted
// sample by 2*step each iteration, accumulating the next tap from 3*step
// ahead of the current position. Once fewer than two more taps remain, the
// last available tap stands in for the missing one (boundary collapse,
// rather than a mirror).
func cubicHorizontalLiftingBase(row []int32, step, c0Start, c2Mult, xStartMult int, divider int32) {
	c0 := row[c0Start]
	c1 := c0
	c2 := c0
	if c2Mult*step < len(row) {
		c2 = row[c2Mult*step]
	}

	x := xStartMult * step
	for x < len(row)-3*step {
		c3 := row[3*step+x]
		row[x] += cubic(c0, c1, c2, c3) / divider
		c0, c1, c2 = c1, c2, c3
		x += 2 * step
	}
	for x < len(row) {
		row[x] += cubic(c0, c1, c2, c2) / divider
		c0, c1 = c1, c2
		x += 2 * step
	}
}

func cubicHorizontalLift(row []int32, step int) {
	cubicHorizontalLiftingBase(row, step, 0, 2, 1, -1)
	cubicHorizontalLiftingBase(row, step, step, 3, 2, 2)
}

func cubicHorizontalUnlift(row []int32, step int) {
	cubicHorizontalLiftingBase(row, step, step, 3, 2, -2)
	cubicHorizontalLiftingBase(row, step, 0, 2, 1, 1)
}

// cubicVerticalLiftingBase applies the four-tap predictor/update to row i,
// reading the rows one and three steps away on each side. A missing outer
// neighbor (prevLeft or nextRight) falls back to the adjacent inner
// neighbor; a missing right neighbor falls back to left.
func cubicVerticalLiftingBase(rows [][]int32, step, i int, divider int32) {
	left := rows[i-step]
	right := left
	if i+step < len(rows) {
		right = rows[i+step]
	}
	prevLeft := left
	if i-3*step >= 0 {
		prevLeft = rows[i-3*step]
	}
	nextRight := right
	if i+3*step < len(rows) {
		nextRight = rows[i+3*step]
	}
	middle := rows[i]

	for x := 0; x < len(middle); x += step {
		middle[x] += cubic(prevLeft[x], left[x], right[x], nextRight[x]) / divider
	}
}

func cubicVerticalLift(rows [][]int32, step int, parallel bool) {
	runIndexParallel(step, len(rows), 2*step, parallel, func(i int) {
		cubicVerticalLiftingBase(rows, step, i, -1)
	})
	runIndexParallel(2*step, len(rows), 2*step, parallel, func(i int) {
		cubicVerticalLiftingBase(rows, step, i, 2)
	})
}

func cubicVerticalUnlift(rows [][]int32, step int, parallel bool) {
	runIndexParallel(2*step, len(rows), 2*step, parallel, func(i int) {
		cubicVerticalLiftingBase(rows, step, i, -2)
	})
	runIndexParallel(step, len(rows), 2*step, parallel, func(i int) {
		cubicVerticalLiftingBase(rows, step, i, 1)
	})
}
