package gfwx

import (
	"encoding/binary"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gfwx-project/gfwx/internal/bio"
	"github.com/gfwx-project/gfwx/internal/chunk"
	"github.com/gfwx-project/gfwx/internal/dwt"
	"github.com/gfwx-project/gfwx/internal/entropy"
	"github.com/gfwx-project/gfwx/internal/header"
	"github.com/gfwx-project/gfwx/internal/quant"
)

// Compress encodes src (an interleaved byte buffer of h.Width*h.Height
// pixels, h.Channels samples each, h.Layers frames) into out, applying
// program's color transform ahead of the lifting/quantization/entropy
// pipeline. It returns the number of bytes written at the front of out:
// the encoded header, the encoded color-transform program, then the
// level-looped compressed payload.
//
// Compress only ever produces 8-bit-unsigned, zero-metadata headers (what
// header.Builder builds); h must match that shape.
func Compress(src []byte, h *Header, program *ColorTransformProgram, out []byte) (int, error) {
	if err := validateSampleType(h); err != nil {
		return 0, err
	}
	if err := validateNoMetadata(h); err != nil {
		return 0, err
	}
	if err := validateBlockCount(h); err != nil {
		return 0, err
	}

	width, height := int(h.Width), int(h.Height)
	channels, layers := int(h.Channels), int(h.Layers)
	channelSize := width * height
	numPlanes := channels * layers

	wantLen := channelSize * channels * layers
	if len(src) < wantLen {
		return 0, UnderflowError("source buffer shorter than width*height*channels*layers")
	}

	if len(out) < header.Size {
		return 0, OverflowError("destination buffer shorter than the header")
	}
	if err := h.Encode(out[:header.Size]); err != nil {
		return 0, IoError("encoding header", err)
	}

	isChroma := make([]bool, numPlanes)
	programOut := out[header.Size:]
	isChromaEnc, programLen, err := program.Encode(programOut, numPlanes)
	if err != nil {
		return 0, OverflowError("destination buffer too small for color-transform program")
	}
	copy(isChroma, isChromaEnc)

	planar := make([]int32, numPlanes*channelSize)
	gatherPlanar(src, channels, channelSize, planar)

	aux := make([]int32, numPlanes*channelSize)
	program.Transform(planar, channelSize, numPlanes, h.Boost(), aux)

	payloadLen, err := compressAuxData(aux, h, isChroma, defaultFactors, out[header.Size+programLen:])
	if err != nil {
		return 0, err
	}

	return header.Size + programLen + payloadLen, nil
}

// CompressAux runs the lifting/quantization/entropy pipeline directly over
// aux, a planar (not interleaved) buffer already past the color-transform
// stage: numPlanes := h.Channels*h.Layers channelSize-sample planes. isChroma
// must be numPlanes long. It is the lower-level entry point compress_aux_data
// corresponds to, for callers that have already applied their own color
// transform (or need none).
func CompressAux(aux []int32, h *Header, isChroma []bool, out []byte) (int, error) {
	if err := validateBlockCount(h); err != nil {
		return 0, err
	}
	return compressAuxData(aux, h, isChroma, defaultFactors, out)
}

func compressAuxData(aux []int32, h *Header, isChroma []bool, factors MultithreadingFactors, out []byte) (int, error) {
	liftAndQuantize(aux, h, isChroma, factors)
	return compressImageData(aux, h, isChroma, factors, out)
}

// liftAndQuantize applies the header's filter, then the scalar quantizer at
// the appropriate chroma/luma quality, to every plane of aux in place.
func liftAndQuantize(aux []int32, h *Header, isChroma []bool, factors MultithreadingFactors) {
	width, height := int(h.Width), int(h.Height)
	channelSize := width * height
	boost := h.Boost()
	chromaQuality := h.ChromaQuality()
	filter := dwt.Filter(h.Filter)

	dwtFactors := dwt.Factors{
		LinearHorizontal: factors.LinearHorizontalLifting,
		LinearVertical:   factors.LinearVerticalLifting,
		CubicHorizontal:  factors.CubicHorizontalLifting,
		CubicVertical:    factors.CubicVerticalLifting,
	}
	quantFactors := quant.Factors{Quantization: factors.Quantization}
	maxQuality := int32(header.QualityMax) * boost

	numPlanes := len(aux) / channelSize
	for c := 0; c < numPlanes; c++ {
		plane := aux[c*channelSize : (c+1)*channelSize]

		dwt.Forward2D(plane, width, height, filter, dwtFactors)

		quality := int32(h.Quality)
		if isChroma[c] {
			quality = chromaQuality
		}
		quant.Quantize(plane, width, height, quality, 0, maxQuality, quantFactors)
	}
}

// compressImageData runs the dyadic level loop from coarsest step to finest
// (step=1), entropy-coding each level's blocks behind a per-block
// uint32-word-count table. Only the coarsest level's first block per
// channel carries a DC sample.
func compressImageData(aux []int32, h *Header, isChroma []bool, factors MultithreadingFactors, out []byte) (int, error) {
	width, height := int(h.Width), int(h.Height)
	channels, layers := int(h.Channels), int(h.Layers)
	chromaQuality := h.ChromaQuality()

	step := 1
	for step*2 < width || step*2 < height {
		step *= 2
	}
	if step<<h.BlockSize == 0 {
		return 0, OverflowError("block size shift overflows")
	}

	hasDC := true
	compressedSize := 0
	hintParallel := len(aux) > factors.Compress

	img := chunk.NewImage(aux, width, height, channels*layers)

	for step >= 1 {
		bs := step << h.BlockSize
		blockCountX := (width + bs - 1) / bs
		blockCountY := (height + bs - 1) / bs
		blockCount := blockCountX * blockCountY * layers * channels

		blockSizesStorageSize := blockCount * 4
		if compressedSize > len(out) || len(out)-compressedSize < blockSizesStorageSize {
			return 0, OverflowError("destination buffer too small for block-size table")
		}

		blockSizesBuf := out[compressedSize : compressedSize+blockSizesStorageSize]
		blocksBuf := out[compressedSize+blockSizesStorageSize:]
		compressedSize += blockSizesStorageSize

		chunks := img.Chunks(bs, step)
		if len(chunks) != blockCount {
			return 0, MalformedError("chunk count does not match the computed block count")
		}
		if blockCount == 0 {
			step /= 2
			hasDC = false
			continue
		}
		tempBlockSize := len(blocksBuf) / blockCount
		if tempBlockSize == 0 {
			return 0, OverflowError("destination buffer too small for block payloads")
		}

		results := make([]uint32, blockCount)
		errs := make([]error, blockCount)

		encodeBlock := func(i int) {
			c := chunks[i]
			blockOut := blocksBuf[i*tempBlockSize : (i+1)*tempBlockSize]
			w := bio.NewWriter(blockOut)

			quality := int32(h.Quality)
			if isChroma[c.Channel] {
				quality = chromaQuality
			}
			isFirstBlockInChannel := c.XRange[0] == 0 && c.YRange[0] == 0

			if err := entropy.Encode(c, w, h.Encoder, quality, hasDC && isFirstBlockInChannel, isChroma[c.Channel]); err != nil {
				errs[i] = &Error{Kind: KindOverflow, Msg: "encoding block", Err: err}
				return
			}
			if err := w.FlushWord(); err != nil {
				errs[i] = &Error{Kind: KindOverflow, Msg: "flushing block", Err: err}
				return
			}
			results[i] = uint32(w.Len())
		}

		if !hintParallel || blockCount <= 1 {
			for i := 0; i < blockCount; i++ {
				encodeBlock(i)
			}
		} else {
			g := new(errgroup.Group)
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i := 0; i < blockCount; i++ {
				i := i
				g.Go(func() error {
					encodeBlock(i)
					return nil
				})
			}
			_ = g.Wait()
		}

		var firstErr error
		for _, e := range errs {
			firstErr = mostSevere(firstErr, e)
		}
		if firstErr != nil {
			return 0, firstErr
		}

		tailPos := 0
		for i := 0; i < blockCount; i++ {
			blockSize := int(results[i])
			binary.LittleEndian.PutUint32(blockSizesBuf[i*4:], results[i]/4)

			if i != 0 {
				blockStart := i * tempBlockSize
				copy(blocksBuf[tailPos:tailPos+blockSize], blocksBuf[blockStart:blockStart+blockSize])
			}
			compressedSize += blockSize
			tailPos += blockSize
		}

		hasDC = false
		step /= 2
	}

	return compressedSize, nil
}
