// Package colortransform implements GFWX's color-transform program: a
// small ordered DSL of per-channel linear combinations, its wire
// serialization over the Golomb-Rice bit stream, and its forward/inverse
// application to planar and interleaved sample buffers.
package colortransform

import (
	"github.com/gfwx-project/gfwx/internal/bio"
)

// Factor is one (source channel, weight) term contributing to a
// ChannelTransform's destination channel.
type Factor struct {
	SrcChannel int
	Factor     int32
}

// ChannelTransform computes one destination channel as
// boost*raw[dest] + (Σ factor*src) / Denominator, where each src operand is
// either the already-computed value of an earlier transform's destination
// channel, or boost*raw[src] if no earlier transform in the program has
// written that channel.
type ChannelTransform struct {
	DestChannel int
	Factors     []Factor
	Denominator int32
	IsChroma    bool
}

// Builder assembles a ChannelTransform one factor at a time, mirroring the
// order-sensitive construction the wire format requires.
type Builder struct {
	t ChannelTransform
}

// NewBuilder starts building a transform for the given destination channel,
// with the conventional denominator of 1.
func NewBuilder(destChannel int) *Builder {
	return &Builder{t: ChannelTransform{DestChannel: destChannel, Denominator: 1}}
}

// Chroma marks the transform's destination channel as carrying chroma
// samples, which selects the chroma quality schedule during quantization.
func (b *Builder) Chroma() *Builder {
	b.t.IsChroma = true
	return b
}

// AddFactor appends one (source channel, weight) term.
func (b *Builder) AddFactor(srcChannel int, factor int32) *Builder {
	b.t.Factors = append(b.t.Factors, Factor{SrcChannel: srcChannel, Factor: factor})
	return b
}

// Denominator sets the divisor applied to the accumulated factor sum.
// denominator must be positive.
func (b *Builder) Denominator(denominator int32) *Builder {
	if denominator <= 0 {
		panic("colortransform: denominator must be positive")
	}
	b.t.Denominator = denominator
	return b
}

// Build returns the assembled transform.
func (b *Builder) Build() ChannelTransform { return b.t }

// Program is an ordered sequence of channel transforms. Forward application
// walks the program in order; inverse application walks it in reverse,
// since later transforms may read earlier ones' destination channels.
type Program struct {
	Transforms []ChannelTransform
}

// Add appends a transform to the program.
func (p *Program) Add(t ChannelTransform) *Program {
	p.Transforms = append(p.Transforms, t)
	return p
}

// Identity returns a program with no transforms: every channel passes
// through unchanged (beyond the boost widening applied uniformly to all
// channels).
func Identity() *Program { return &Program{} }

// YUV444ToYUV444 stores the input as-is, flagging channels 1 and 2 as
// chroma without performing any arithmetic. Decompressed output is YUV444.
func YUV444ToYUV444() *Program {
	p := &Program{}
	p.Add(NewBuilder(1).Chroma().Build())
	p.Add(NewBuilder(2).Chroma().Build())
	return p
}

// RGBToYUV approximates RGB as YUV444 (channel order U,Y,V): R -= G
// (chroma), B -= G (chroma), G += (R + B) / 4 (luma).
func RGBToYUV() *Program {
	p := &Program{}
	p.Add(NewBuilder(0).AddFactor(1, -1).Chroma().Build())
	p.Add(NewBuilder(2).AddFactor(1, -1).Chroma().Build())
	p.Add(NewBuilder(1).AddFactor(0, 1).AddFactor(2, 1).Denominator(4).Build())
	return p
}

// BGRToA710 approximates BGR as A710: R -= G (chroma); B -= (G*2+R)/2
// (chroma); G += (B*2+R*3)/8 (luma).
func BGRToA710() *Program {
	p := &Program{}
	p.Add(NewBuilder(2).AddFactor(1, -1).Chroma().Build())
	p.Add(NewBuilder(0).AddFactor(1, -2).AddFactor(2, -1).Denominator(2).Chroma().Build())
	p.Add(NewBuilder(1).AddFactor(0, 2).AddFactor(2, 3).Denominator(8).Build())
	return p
}

// RGBToA710 approximates RGB as A710 using the same coefficients as
// BGRToA710 with the red and blue source channels swapped.
func RGBToA710() *Program {
	p := &Program{}
	p.Add(NewBuilder(0).AddFactor(1, -1).Chroma().Build())
	p.Add(NewBuilder(2).AddFactor(1, -2).AddFactor(0, -1).Denominator(2).Chroma().Build())
	p.Add(NewBuilder(1).AddFactor(2, 2).AddFactor(0, 3).Denominator(8).Build())
	return p
}

// IsChannelTransformed reports whether channel appears as the destination
// of some transform that actually does arithmetic (a nonzero factor list or
// a nontrivial denominator); a channel only ever flagged chroma with no
// arithmetic does not count.
func (p *Program) IsChannelTransformed(channel int) bool {
	for _, t := range p.Transforms {
		if t.DestChannel == channel && (t.Denominator > 1 || len(t.Factors) > 0) {
			return true
		}
	}
	return false
}

// Decode reads a Program from the Golomb-Rice bit stream in buf, setting
// isChroma[dest] for every transform flagged chroma, and returns the
// word-aligned byte count consumed so a caller can locate whatever follows
// the program in the same buffer. isChroma must be pre-sized to the
// image's channel count.
func Decode(buf []byte, isChroma []bool) (*Program, int, error) {
	r := bio.NewReader(buf)
	p := &Program{}

	for {
		destChannel, err := bio.SignedDecode(r, 2)
		if err != nil {
			return nil, 0, err
		}
		if destChannel < 0 {
			break
		}
		if int(destChannel) >= len(isChroma) {
			return nil, 0, errMalformed("dest_channel out of range")
		}

		b := NewBuilder(int(destChannel))
		for {
			srcChannel, err := bio.SignedDecode(r, 2)
			if err != nil {
				return nil, 0, err
			}
			if srcChannel < 0 {
				break
			}
			if int(srcChannel) >= len(isChroma) {
				return nil, 0, errMalformed("src_channel out of range")
			}
			factor, err := bio.SignedDecode(r, 2)
			if err != nil {
				return nil, 0, err
			}
			b.AddFactor(int(srcChannel), factor)
		}

		denominator, err := bio.SignedDecode(r, 2)
		if err != nil {
			return nil, 0, err
		}
		if denominator <= 0 {
			return nil, 0, errMalformed("denominator must be positive")
		}
		b.Denominator(denominator)

		chromaFlag, err := bio.SignedDecode(r, 2)
		if err != nil {
			return nil, 0, err
		}
		if chromaFlag != 0 {
			b.Chroma()
			isChroma[destChannel] = true
		}

		p.Add(b.Build())
	}

	r.FlushWord()
	return p, r.Pos(), nil
}

// Encode writes the program to buf and returns the chroma flags for a
// channels-length image (every channel not targeted by a transform stays
// false).
func (p *Program) Encode(buf []byte, channels int) ([]bool, int, error) {
	w := bio.NewWriter(buf)
	isChroma := make([]bool, channels)

	for _, t := range p.Transforms {
		if err := bio.SignedCode(w, int32(t.DestChannel), 2); err != nil {
			return nil, 0, err
		}
		for _, f := range t.Factors {
			if err := bio.SignedCode(w, int32(f.SrcChannel), 2); err != nil {
				return nil, 0, err
			}
			if err := bio.SignedCode(w, f.Factor, 2); err != nil {
				return nil, 0, err
			}
		}
		if err := bio.SignedCode(w, -1, 2); err != nil {
			return nil, 0, err
		}
		if err := bio.SignedCode(w, t.Denominator, 2); err != nil {
			return nil, 0, err
		}
		chromaBit := int32(0)
		if t.IsChroma {
			chromaBit = 1
		}
		if err := bio.SignedCode(w, chromaBit, 2); err != nil {
			return nil, 0, err
		}
		if t.DestChannel < channels {
			isChroma[t.DestChannel] = t.IsChroma
		}
	}

	if err := bio.SignedCode(w, -1, 2); err != nil {
		return nil, 0, err
	}
	if err := w.FlushWord(); err != nil {
		return nil, 0, err
	}

	return isChroma, w.Len(), nil
}

// Transform applies the program in plane order, writing the result into
// aux (one channel-sized plane per destination channel, all planes the
// same length channelSize). image holds the same plane layout pre-boost;
// channels not targeted by any transform are copied through as
// boost*image[channel].
func (p *Program) Transform(image []int32, channelSize int, numChannels int, boost int32, aux []int32) {
	transformed := make([]bool, numChannels)

	for _, t := range p.Transforms {
		destBase := t.DestChannel * channelSize

		for _, f := range t.Factors {
			if transformed[f.SrcChannel] {
				srcBase := f.SrcChannel * channelSize
				for i := 0; i < channelSize; i++ {
					aux[destBase+i] += aux[srcBase+i] * f.Factor
				}
			} else {
				boostedFactor := f.Factor * boost
				srcBase := f.SrcChannel * channelSize
				for i := 0; i < channelSize; i++ {
					aux[destBase+i] += image[srcBase+i] * boostedFactor
				}
			}
		}

		for i := 0; i < channelSize; i++ {
			aux[destBase+i] = truncDiv(aux[destBase+i], t.Denominator)
			aux[destBase+i] += image[destBase+i] * boost
		}

		transformed[t.DestChannel] = true
	}

	for c := 0; c < numChannels; c++ {
		if transformed[c] {
			continue
		}
		base := c * channelSize
		for i := 0; i < channelSize; i++ {
			aux[base+i] = image[base+i] * boost
		}
	}
}

// Detransform reverses Transform in place over aux, walking the program in
// reverse order since later transforms may read earlier ones' outputs.
func (p *Program) Detransform(aux []int32, channelSize int) {
	temp := make([]int32, channelSize)

	for i := len(p.Transforms) - 1; i >= 0; i-- {
		t := p.Transforms[i]
		for j := range temp {
			temp[j] = 0
		}
		destBase := t.DestChannel * channelSize

		for _, f := range t.Factors {
			srcBase := f.SrcChannel * channelSize
			for j := 0; j < channelSize; j++ {
				temp[j] += aux[srcBase+j] * f.Factor
			}
		}

		for j := 0; j < channelSize; j++ {
			aux[destBase+j] -= truncDiv(temp[j], t.Denominator)
		}
	}
}

func truncDiv(a, b int32) int32 {
	return a / b // Go's integer division already truncates toward zero.
}

func errMalformed(msg string) error { return &Error{Msg: msg} }

// Error reports a color-transform-program decode failure.
type Error struct{ Msg string }

func (e *Error) Error() string { return "colortransform: " + e.Msg }
