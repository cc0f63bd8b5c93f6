// Package entropy implements GFWX's three entropy-coder variants — Turbo,
// Fast, and Contextual — over a single resolution-level chunk. All three
// share the same traversal of the level's lattice (rows top to bottom at
// the chunk's step, the same lattice quant walks) and the same Golomb-Rice code
// family in internal/bio; they differ only in how they pick each sample's
// remainder width and whether zero-runs are coded separately.
package entropy

import (
	"github.com/gfwx-project/gfwx/internal/bio"
	"github.com/gfwx-project/gfwx/internal/chunk"
	"github.com/gfwx-project/gfwx/internal/header"
)

// Encode writes c's samples at resolution level c.Step to w. hasDC codes
// the chunk's own corner sample (the coarsest coefficient a block carries)
// with a wide fixed pot ahead of everything else; isChroma selects the
// chroma encode_s threshold schedule.
func Encode(c *chunk.Chunk, w *bio.Writer, scheme header.Encoder, q int32, hasDC, isChroma bool) error {
	step := int32(c.Step)
	x0, x1 := int32(c.XRange[0]), int32(c.XRange[1])
	y0, y1 := int32(c.YRange[0]), int32(c.YRange[1])
	sizex := x1 - x0
	sizey := y1 - y0

	if hasDC && sizex > 0 && sizey > 0 {
		if err := bio.SignedCode(w, c.Get(int(y0), int(x0)), 4); err != nil {
			return err
		}
	}

	var context [2]uint32
	run := int32(0)
	runCoder := int32(0)
	if scheme == header.EncoderTurbo && (q == 0 || (step < 2048 && q*step < 2048)) {
		runCoder = 1
	}

	for y := int32(0); y < sizey; y += step {
		xStep := step * 2
		if y&step != 0 {
			xStep = step
		}
		for x := xStep - step; x < sizex; x += xStep {
			s := c.Get(int(y0+y), int(x0+x))

			if runCoder != 0 && s == 0 {
				run++
				continue
			}

			if scheme == header.EncoderTurbo {
				if runCoder != 0 {
					if err := bio.UnsignedCode(w, uint32(run), 1); err != nil {
						return err
					}
					run = 0
					shifted := s
					if s < 0 {
						shifted = s + 1
					}
					if err := bio.InterleavedCode(w, shifted, 1); err != nil {
						return err
					}
				} else {
					if err := bio.InterleavedCode(w, s, 1); err != nil {
						return err
					}
				}
				continue
			}

			if runCoder != 0 {
				if err := bio.UnsignedCode(w, uint32(run), uint32(runCoder)); err != nil {
					return err
				}
				run = 0
				if s < 0 {
					s++
				}
			}
			if scheme == header.EncoderContextual {
				context = getContext(c, x, y)
			}
			sumSq := square(context[0])

			if err := encodeS(w, s, sumSq, context, isChroma); err != nil {
				return err
			}

			if scheme == header.EncoderFast {
				t := uint32(absI32(s))
				context = [2]uint32{
					((context[0]*15 + 7) >> 4) + t,
					((context[1]*15 + 7) >> 4) + square(minU32(t, 4096)),
				}
				runCoder = getRunCoderFast(context, s, runCoder)
			} else {
				runCoder = getRunCoder(context, s, q, runCoder, sumSq)
			}
		}
	}

	if run != 0 {
		if err := bio.UnsignedCode(w, uint32(run), uint32(runCoder)); err != nil {
			return err
		}
	}
	return nil
}

// Decode is Encode's inverse, reading from r and writing decoded samples
// back into c.
func Decode(c *chunk.Chunk, r *bio.Reader, scheme header.Encoder, q int32, hasDC, isChroma bool) error {
	step := int32(c.Step)
	x0, x1 := int32(c.XRange[0]), int32(c.XRange[1])
	y0, y1 := int32(c.YRange[0]), int32(c.YRange[1])
	sizex := x1 - x0
	sizey := y1 - y0

	if hasDC && sizex > 0 && sizey > 0 {
		v, err := bio.SignedDecode(r, 4)
		if err != nil {
			return err
		}
		c.Set(int(y0), int(x0), v)
	}

	var context [2]uint32
	run := int32(-1)
	runCoder := int32(0)
	if scheme == header.EncoderTurbo && (q == 0 || (step < 2048 && q*step < 2048)) {
		runCoder = 1
	}

	for y := int32(0); y < sizey; y += step {
		xStep := step * 2
		if y&step != 0 {
			xStep = step
		}
		for x := xStep - step; x < sizex; x += xStep {
			var s int32

			if runCoder != 0 && run == -1 {
				v, err := bio.UnsignedDecode(r, uint32(runCoder))
				if err != nil {
					return err
				}
				run = int32(v)
			}

			if run <= 0 {
				if scheme == header.EncoderTurbo {
					v, err := bio.InterleavedDecode(r, 1)
					if err != nil {
						return err
					}
					s = v
				} else {
					if scheme == header.EncoderContextual {
						context = getContext(c, x, y)
					}
					sumSq := square(context[0])
					v, err := getS(r, sumSq, context, isChroma)
					if err != nil {
						return err
					}
					s = v

					if scheme == header.EncoderFast {
						t := uint32(absI32(s))
						context = [2]uint32{
							((context[0]*15 + 7) >> 4) + t,
							((context[1]*15 + 7) >> 4) + square(minU32(t, 4096)),
						}
						runCoder = getRunCoderFast(context, s, runCoder)
					} else {
						runCoder = getRunCoder(context, s, q, runCoder, sumSq)
					}
				}
				if run == 0 && s <= 0 {
					s--
				}
				run = -1
			} else {
				run--
			}

			c.Set(int(y0+y), int(x0+x), s)
		}
	}
	return nil
}
