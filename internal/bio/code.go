package bio

import "errors"

// ErrMalformedCode is returned by UnsignedDecode when an escape chain
// exceeds the depth any value representable in 32 bits can need — the
// input cannot have come from a well-formed encoder.
var ErrMalformedCode = errors.New("bio: golomb-rice escape chain exceeds its bound")

// UnsignedCode writes x using a Golomb-Rice code with remainder width pot:
// a unary-coded quotient (x>>pot) followed by the pot-bit remainder. A
// quotient of 12 or more is written as a 12-zero-bit escape and the
// encoding continues on the residual with a widened remainder, so no unary
// prefix is longer than 12 zero bits (each escape is exactly 12 zeros).
func UnsignedCode(w *Writer, x uint32, pot uint32) error {
	for {
		y := x >> pot
		if y >= 12 {
			if err := w.PutBits(0, 12); err != nil {
				return err
			}
			x -= 12 << pot
			if pot < 20 {
				pot += 4
			} else {
				pot = 24
			}
			continue
		}

		var mask uint32
		if pot < 32 {
			mask = ^(^uint32(0) << pot)
		} else {
			mask = ^uint32(0)
		}
		val := (uint32(1) << pot) | (x & mask)
		return w.PutBits(val, y+1+pot)
	}
}

// UnsignedDecode reads a value written by UnsignedCode with the same
// starting pot.
func UnsignedDecode(r *Reader, pot uint32) (uint32, error) {
	var result uint32
	for {
		p := pot
		if p > 24 {
			p = 24
		}
		x, err := r.GetZeros(12)
		if err != nil {
			return 0, err
		}
		if x == 12 {
			// The escape pot grows by 4 per round and saturates at 108,
			// which is exactly deep enough to admit 2^32-1; one more
			// escape cannot be well-formed output.
			if pot >= 108 {
				return 0, ErrMalformedCode
			}
			result += 12 << p
			pot += 4
			if pot > 108 {
				pot = 108
			}
			continue
		}

		if p != 0 {
			bits, err := r.GetBits(p)
			if err != nil {
				return 0, err
			}
			result += (x << p) + bits
		} else {
			result += x
		}
		return result, nil
	}
}

// InterleavedCode writes a signed value using the zig-zag mapping
// (non-positive values to even codes, positive values to odd codes) over
// UnsignedCode, so small magnitudes of either sign stay cheap.
func InterleavedCode(w *Writer, x int32, pot uint32) error {
	var y uint32
	if x <= 0 {
		y = uint32(-2 * int64(x))
	} else {
		y = uint32(2*int64(x) - 1)
	}
	return UnsignedCode(w, y, pot)
}

// InterleavedDecode reads a value written by InterleavedCode.
func InterleavedDecode(r *Reader, pot uint32) (int32, error) {
	y, err := UnsignedDecode(r, pot)
	if err != nil {
		return 0, err
	}
	if y&1 == 0 {
		return -int32(y >> 1), nil
	}
	return int32((y + 1) >> 1), nil
}

// SignedCode writes a signed value as its magnitude (via UnsignedCode)
// followed by a single sign bit, omitted entirely for a zero magnitude.
func SignedCode(w *Writer, x int32, pot uint32) error {
	ux := uint32(x)
	if x < 0 {
		ux = uint32(-x)
	}
	if err := UnsignedCode(w, ux, pot); err != nil {
		return err
	}
	if ux != 0 {
		sign := uint32(0)
		if x > 0 {
			sign = 1
		}
		return w.PutBits(sign, 1)
	}
	return nil
}

// SignedDecode reads a value written by SignedCode.
func SignedDecode(r *Reader, pot uint32) (int32, error) {
	ux, err := UnsignedDecode(r, pot)
	if err != nil {
		return 0, err
	}
	if ux == 0 {
		return 0, nil
	}
	sign, err := r.GetBits(1)
	if err != nil {
		return 0, err
	}
	if sign != 0 {
		return int32(ux), nil
	}
	return -int32(ux), nil
}
