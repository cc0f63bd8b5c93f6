package header

import "fmt"

// Builder constructs a well-formed Header for encoding, validating field
// ranges the way Decode's bit-packing requires them to hold (BlockSize
// packs into 5 bits, Quality into 10, ChromaScale into 8).
//
// A decoded Header always comes from Decode; Builder is the only path for
// assembling one to encode.
type Builder struct {
	Width        uint32
	Height       uint32
	Layers       uint16
	Channels     uint16
	Quality      uint16
	ChromaScale  uint8
	BlockSize    uint8
	Filter       Filter
	Encoder      Encoder
	Intent       Intent
	MetadataSize uint32
}

// NewBuilder returns a Builder with the conventional defaults: one layer,
// one channel, lossless quality, no chroma scaling, and the default block
// size.
func NewBuilder() *Builder {
	return &Builder{
		Layers:      1,
		Channels:    1,
		Quality:     QualityMax,
		ChromaScale: 1,
		BlockSize:   BlockDefault,
		Filter:      FilterLinear,
		Encoder:     EncoderTurbo,
		Intent:      IntentGeneric,
	}
}

// Build validates the accumulated fields and returns a Header ready to
// encode. Version is fixed at 1, BitDepth at 8, IsSigned at false, and
// Quantization at Scalar — this module only ever produces that
// combination, though Decode accepts whatever a well-formed peer wrote.
func (b *Builder) Build() (*Header, error) {
	if err := checkRange("width", int64(b.Width), 0, 1<<30); err != nil {
		return nil, err
	}
	if err := checkRange("height", int64(b.Height), 0, 1<<30); err != nil {
		return nil, err
	}
	if err := checkRange("quality", int64(b.Quality), 0, 1025); err != nil {
		return nil, err
	}
	// block_size packs as (block_size-2) into 5 wire bits, so 1 must be
	// rejected here too even though it would otherwise fit the "positive
	// u8" shape check_range enforces elsewhere: BlockSize-2 underflows a
	// uint8 when BlockSize < 2.
	if err := checkRange("block_size", int64(b.BlockSize), 1, 32); err != nil {
		return nil, err
	}
	if b.Channels == 0 {
		return nil, &Error{Kind: ErrKindWrongValue, Field: "channels"}
	}
	if b.Layers == 0 {
		return nil, &Error{Kind: ErrKindWrongValue, Field: "layers"}
	}
	if b.ChromaScale == 0 {
		return nil, &Error{Kind: ErrKindWrongValue, Field: "chroma_scale"}
	}

	return &Header{
		Version:      1,
		Width:        b.Width,
		Height:       b.Height,
		Layers:       b.Layers,
		Channels:     b.Channels,
		BitDepth:     8,
		IsSigned:     false,
		Quality:      b.Quality,
		ChromaScale:  b.ChromaScale,
		BlockSize:    b.BlockSize,
		Filter:       b.Filter,
		Quantization: QuantizationScalar,
		Encoder:      b.Encoder,
		Intent:       b.Intent,
		MetadataSize: b.MetadataSize,
	}, nil
}

func checkRange(name string, v, min, max int64) error {
	if v <= min || v >= max {
		return &Error{Kind: ErrKindWrongValue, Field: fmt.Sprintf("%s must be in range (%d..%d)", name, min, max)}
	}
	return nil
}
