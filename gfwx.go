// Package gfwx implements the GFWX wavelet image codec: a fixed 32-byte
// container header, a per-channel linear color-transform program, a choice
// of lifting wavelet filters, a scalar quantizer, and a block-partitioned
// Golomb-Rice entropy coder, composed into a single-pass compress/decompress
// pipeline over planar or interleaved integer sample buffers.
package gfwx

import (
	"errors"

	"github.com/gfwx-project/gfwx/internal/colortransform"
	"github.com/gfwx-project/gfwx/internal/header"
)

// Header is the fully decoded GFWX container header.
type Header = header.Header

// HeaderBuilder constructs a well-formed Header for encoding.
type HeaderBuilder = header.Builder

// NewHeaderBuilder returns a HeaderBuilder with the conventional defaults.
func NewHeaderBuilder() *HeaderBuilder { return header.NewBuilder() }

// Filter selects the lifting wavelet transform.
type Filter = header.Filter

// Quantization selects the quantizer family.
type Quantization = header.Quantization

// Encoder selects the entropy coder variant.
type Encoder = header.Encoder

// Intent records the color meaning of an image's channels.
type Intent = header.Intent

const (
	FilterLinear = header.FilterLinear
	FilterCubic  = header.FilterCubic
)

const QuantizationScalar = header.QuantizationScalar

const (
	EncoderTurbo      = header.EncoderTurbo
	EncoderFast       = header.EncoderFast
	EncoderContextual = header.EncoderContextual
)

const (
	IntentGeneric = header.IntentGeneric
	IntentRGB     = header.IntentRGB
	IntentRGBA    = header.IntentRGBA
	IntentBGR     = header.IntentBGR
	IntentBGRA    = header.IntentBGRA
	IntentYUV444  = header.IntentYUV444
)

const (
	// QualityMax is the highest representable quality value; at this value
	// the quantizer is lossless and no boost is applied.
	QualityMax = header.QualityMax
	// BlockDefault is the conventional log2 block-size shift.
	BlockDefault = header.BlockDefault
	// BlockMax is the conventional largest log2 block-size shift; headers
	// accept shifts up to BlockMax+1.
	BlockMax = header.BlockMax
	// HeaderSize is the encoded byte length of a Header.
	HeaderSize = header.Size
)

// DecodeHeader reads a Header from the first HeaderSize bytes of buf.
func DecodeHeader(buf []byte) (*Header, error) {
	h, err := header.Decode(buf)
	if err != nil {
		return nil, wrapHeaderError(err)
	}
	return h, nil
}

// ColorTransformProgram is an ordered sequence of per-channel linear
// combinations applied between the color-transform stage and the lifting
// stage.
type ColorTransformProgram = colortransform.Program

// ColorTransformBuilder assembles a single ChannelTransform.
type ColorTransformBuilder = colortransform.Builder

// NewColorTransformBuilder starts building a transform for destChannel.
func NewColorTransformBuilder(destChannel int) *ColorTransformBuilder {
	return colortransform.NewBuilder(destChannel)
}

// IdentityColorTransform returns a program with no transforms.
func IdentityColorTransform() *ColorTransformProgram { return colortransform.Identity() }

// YUV444ColorTransform flags channels 1 and 2 as chroma without performing
// any arithmetic.
func YUV444ColorTransform() *ColorTransformProgram { return colortransform.YUV444ToYUV444() }

// RGBToYUVColorTransform approximates RGB as YUV444.
func RGBToYUVColorTransform() *ColorTransformProgram { return colortransform.RGBToYUV() }

// BGRToA710ColorTransform approximates BGR as A710.
func BGRToA710ColorTransform() *ColorTransformProgram { return colortransform.BGRToA710() }

// RGBToA710ColorTransform approximates RGB as A710.
func RGBToA710ColorTransform() *ColorTransformProgram { return colortransform.RGBToA710() }

// validateSampleType reports whether this module's byte-buffer compress and
// decompress entry points can handle h: both only ever produce and consume
// 8-bit unsigned samples (the only combination header.Builder ever
// produces), so a header naming any other bit depth or signedness is a
// caller/peer mismatch rather than a malformed stream.
func validateSampleType(h *Header) error {
	if h.BitDepth != 8 || h.IsSigned {
		return TypeMismatchError("only 8-bit unsigned sample buffers are supported by this entry point")
	}
	return nil
}

// validateNoMetadata reports an error if h declares metadata bytes: the
// byte-buffer Compress/Decompress entry points have no parameter for
// metadata content, so a nonzero MetadataSize can never be satisfied here.
func validateNoMetadata(h *Header) error {
	if h.MetadataSize != 0 {
		return UnsupportedError("metadata payloads are not supported by this entry point")
	}
	return nil
}

// validateGeometry enforces the header's geometry invariants on the decode
// path, where the header comes off the wire instead of through Builder:
// both dimensions nonzero and under 2^30, and width*height*layers*channels
// small enough to address as one slice.
func validateGeometry(h *Header) error {
	if h.Width == 0 || h.Height == 0 || h.Width >= 1<<30 || h.Height >= 1<<30 {
		return MalformedError("image dimensions out of range")
	}
	total, ok := mulChecked(uint64(h.Width), uint64(h.Height))
	if ok {
		total, ok = mulChecked(total, uint64(h.Channels)*uint64(h.Layers))
	}
	if !ok || total > uint64(1)<<62 {
		return MalformedError("total sample count out of range")
	}
	return nil
}

// mulChecked returns a*b and true, or (0, false) if the multiplication
// overflows uint64.
func mulChecked(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/a != b {
		return 0, false
	}
	return c, true
}

// validateBlockCount rejects headers whose finest-resolution block count
// (the largest of any level compress/decompress will iterate over) would
// overflow the uint32 block-size-table entries each level's payload is
// prefixed with. The finest level (step=1) always has the most blocks of
// any level in the dyadic schedule, so checking it once bounds every level.
func validateBlockCount(h *Header) error {
	bs := uint64(1) << h.BlockSize
	blockCountX := (uint64(h.Width) + bs - 1) / bs
	blockCountY := (uint64(h.Height) + bs - 1) / bs
	numPlanes := uint64(h.Channels) * uint64(h.Layers)

	count, ok := mulChecked(blockCountX, blockCountY)
	if ok {
		count, ok = mulChecked(count, numPlanes)
	}
	if !ok || count >= uint64(1)<<32 {
		return OverflowError("block count exceeds the representable range")
	}
	return nil
}

// wrapHeaderError maps internal/header's decode error kinds onto the
// public error taxonomy: a short buffer is an Underflow, a bad magic or an
// unrecognized enum byte is Malformed (the stream is well-formed-length but
// not a valid GFWX header).
func wrapHeaderError(err error) error {
	kind := KindMalformed
	var hErr *header.Error
	if errors.As(err, &hErr) && hErr.Kind == header.ErrKindShort {
		kind = KindUnderflow
	}
	return &Error{Kind: kind, Msg: "decoding header", Err: err}
}
