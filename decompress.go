package gfwx

import (
	"encoding/binary"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gfwx-project/gfwx/internal/bio"
	"github.com/gfwx-project/gfwx/internal/chunk"
	"github.com/gfwx-project/gfwx/internal/colortransform"
	"github.com/gfwx-project/gfwx/internal/dwt"
	"github.com/gfwx-project/gfwx/internal/entropy"
	"github.com/gfwx-project/gfwx/internal/header"
	"github.com/gfwx-project/gfwx/internal/quant"
)

// Decompress decodes the header and color-transform program from the front
// of in, then decodes the compressed payload that follows into out as an
// interleaved byte buffer (the inverse layout Compress produces).
//
// downsampling requests a lower-resolution decode: only levels down to
// step>>downsampling >= 1 are decoded, and out need only be sized for the
// downsampled dimensions (see Header.DownsampledWidth/Height). probe
// decodes the block-size tables to compute the resumable offset without
// materializing any samples, leaving out untouched.
//
// The returned int is 0 if the stream decoded in full, or otherwise the
// byte offset into in up to which a subsequent call (given more of the
// stream) would make further progress — the "next point of interest" for a
// truncated or still-arriving payload.
func Decompress(in []byte, downsampling uint, probe bool, out []byte) (*Header, int, error) {
	h, err := DecodeHeader(in)
	if err != nil {
		return nil, 0, err
	}
	if err := validateGeometry(h); err != nil {
		return h, 0, err
	}
	if err := validateSampleType(h); err != nil {
		return h, 0, err
	}
	if err := validateNoMetadata(h); err != nil {
		return h, 0, err
	}
	if err := validateBlockCount(h); err != nil {
		return h, 0, err
	}

	channels, layers := int(h.Channels), int(h.Layers)
	numPlanes := channels * layers

	isChroma := make([]bool, numPlanes)
	program, programLen, err := colortransform.Decode(in[header.Size:], isChroma)
	if err != nil {
		return h, 0, &Error{Kind: KindMalformed, Msg: "decoding color-transform program", Err: err}
	}

	payload := in[header.Size+programLen:]
	channelSize := h.DownsampledChannelSize(downsampling)
	aux := make([]int32, numPlanes*channelSize)

	next, err := decompressImageData(aux, h, payload, downsampling, probe, isChroma, defaultFactors)
	if err != nil {
		return h, 0, err
	}
	if next > 0 {
		next += header.Size + programLen
	}

	if probe {
		return h, next, nil
	}

	unliftAndDequantize(aux, h, isChroma, downsampling, defaultFactors)
	program.Detransform(aux, channelSize)

	wantLen := channelSize * channels * layers
	if len(out) < wantLen {
		return h, 0, OverflowError("destination buffer shorter than the downsampled image")
	}
	scatterPlanar(aux, channels, channelSize, h.Boost(), out)

	return h, next, nil
}

// DecompressAux decodes payload directly into aux, a planar buffer sized
// numPlanes*h.DownsampledChannelSize(downsampling), skipping any color
// transform. It mirrors decompress_aux_data: the lower-level counterpart of
// CompressAux, for callers that apply their own color transform (or need
// none) outside this package.
func DecompressAux(aux []int32, h *Header, isChroma []bool, downsampling uint, probe bool, payload []byte) (int, error) {
	if err := validateBlockCount(h); err != nil {
		return 0, err
	}
	next, err := decompressImageData(aux, h, payload, downsampling, probe, isChroma, defaultFactors)
	if err != nil {
		return 0, err
	}
	if !probe {
		unliftAndDequantize(aux, h, isChroma, downsampling, defaultFactors)
	}
	return next, nil
}

// unliftAndDequantize reverses liftAndQuantize: dequantize first (at the
// quality shifted left by downsampling, since a downsampled decode skips
// the finer steps a full decode would have quantized against), then apply
// the inverse lifting filter.
func unliftAndDequantize(aux []int32, h *Header, isChroma []bool, downsampling uint, factors MultithreadingFactors) {
	width := h.DownsampledWidth(downsampling)
	height := h.DownsampledHeight(downsampling)
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

		quality := int32(h.Quality)
		if isChroma[c] {
			quality = chromaQuality
		}
		quant.Dequantize(plane, width, height, quality<<downsampling, 0, maxQuality, quantFactors)

		dwt.Inverse2D(plane, width, height, filter, dwtFactors)
	}
}

// decompressImageData mirrors compressImageData's level loop: coarsest step
// first, stopping once step>>downsampling drops below 1. Each level reads a
// per-block word-count table, then decodes whatever blocks fully arrived;
// a level whose table or payload ran short leaves the rest of the loop
// unexecuted and reports where more data would help.
func decompressImageData(aux []int32, h *Header, payload []byte, downsampling uint, probe bool, isChroma []bool, factors MultithreadingFactors) (int, error) {
	width, height := int(h.Width), int(h.Height)
	channels, layers := int(h.Channels), int(h.Layers)
	chromaQuality := h.ChromaQuality()

	step := 1
	for step*2 < width || step*2 < height {
		step *= 2
	}
	if step<<h.BlockSize == 0 {
		return 0, UnderflowError("block size shift overflows")
	}

	nextPointOfInterest := len(payload) + 1024
	isTruncated := false
	hasDC := true
	decompressedSize := 0
	hintParallel := len(aux) > factors.Compress

	downsampledWidth := h.DownsampledWidth(downsampling)
	downsampledHeight := h.DownsampledHeight(downsampling)

	for step>>downsampling >= 1 {
		bs := step << h.BlockSize
		blockCountX := (width + bs - 1) / bs
		blockCountY := (height + bs - 1) / bs
		blockCount := blockCountX * blockCountY * layers * channels

		isTruncated = true

		blockSizesStorageSize := blockCount * 4
		if decompressedSize > len(payload) {
			return 0, UnderflowError("truncated before the block-size table")
		}
		bufferRemainder := payload[decompressedSize:]
		if len(bufferRemainder) <= blockSizesStorageSize {
			break
		}

		blockSizesBuf := bufferRemainder[:blockSizesStorageSize]
		blocksBuf := bufferRemainder[blockSizesStorageSize:]

		blockSizes := make([]int, blockCount)
		offsets := make([]int, blockCount)
		blocksSizeSum := 0
		for i := range blockSizes {
			blockSizes[i] = int(binary.LittleEndian.Uint32(blockSizesBuf[i*4:])) * 4
			offsets[i] = blocksSizeSum
			blocksSizeSum += blockSizes[i]
		}

		nextPointOfInterest = decompressedSize + blockSizesStorageSize + blocksSizeSum
		if step>>downsampling > 1 {
			nextPointOfInterest += blockSizesStorageSize * 4
		}

		if len(blocksBuf) >= blocksSizeSum {
			isTruncated = false
		}

		stepDownsampled := step >> downsampling
		blockSizeDownsampled := stepDownsampled << h.BlockSize

		img := chunk.NewImage(aux, downsampledWidth, downsampledHeight, channels*layers)
		chunks := img.Chunks(blockSizeDownsampled, stepDownsampled)
		if len(chunks) != blockCount {
			return 0, MalformedError("chunk count does not match the computed block count")
		}

		errs := make([]error, blockCount)
		decodeBlock := func(i int) {
			// A zero-size entry marks a block with no coded residuals;
			// a block extending past the available payload is treated as
			// absent the same way, leaving its lattice at zero.
			size := blockSizes[i]
			if probe || size == 0 || offsets[i] < 0 || offsets[i]+size > len(blocksBuf) {
				return
			}
			c := chunks[i]
			r := bio.NewReader(blocksBuf[offsets[i] : offsets[i]+size])

			quality := int32(h.Quality)
			if isChroma[c.Channel] {
				quality = chromaQuality
			}
			isFirstBlockInChannel := c.XRange[0] == 0 && c.YRange[0] == 0

			// Turbo picks its run coder from q*step; the chunk carries the
			// downsampled step, so scale q up by the same factor to keep the
			// product the encoder saw.
			if h.Encoder == header.EncoderTurbo {
				quality <<= downsampling
			}

			if err := entropy.Decode(c, r, h.Encoder, quality, hasDC && isFirstBlockInChannel, isChroma[c.Channel]); err != nil {
				errs[i] = &Error{Kind: KindUnderflow, Msg: "decoding block", Err: err}
			}
		}

		if blockCount > 0 {
			if !hintParallel || blockCount <= 1 {
				for i := 0; i < blockCount; i++ {
					decodeBlock(i)
				}
			} else {
				g := new(errgroup.Group)
				g.SetLimit(runtime.GOMAXPROCS(0))
				for i := 0; i < blockCount; i++ {
					i := i
					g.Go(func() error {
						decodeBlock(i)
						return nil
					})
				}
				_ = g.Wait()
			}
		}

		var firstErr error
		for _, e := range errs {
			firstErr = mostSevere(firstErr, e)
		}
		if firstErr != nil {
			return 0, firstErr
		}

		if isTruncated {
			break
		}

		hasDC = false
		step /= 2
		decompressedSize += blockSizesStorageSize + blocksSizeSum
	}

	if isTruncated {
		return nextPointOfInterest, nil
	}
	return 0, nil
}
