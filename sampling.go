package gfwx

import "golang.org/x/exp/constraints"

// clamp restricts v to [lo, hi], shared by every sample-range boundary in
// this package (scatterPlanar's byte range, and any caller needing the same
// saturation against a differently-typed bound).
func clamp[T constraints.Integer](v, lo, hi T) T {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// gatherPlanar copies an interleaved byte buffer (header.Layers consecutive
// frames, each channels samples per pixel) into plane-major layout: one
// channelSize-sample plane per (layer, channel) pair, ordered
// layer*channels+channel, matching the order colortransform.Program.Transform
// expects for its numChannels argument. Sample values are copied as-is
// (unboosted); Transform applies the boost itself.
//
// layer locates a plane's base offset back in the interleaved buffer: plane
// c belongs to interleaved frame c/channels, at intra-pixel offset c%channels.
func gatherPlanar(src []byte, channels, channelSize int, dst []int32) {
	numPlanes := len(dst) / channelSize
	for c := 0; c < numPlanes; c++ {
		destBase := c * channelSize
		layer := (c/channels)*channelSize*channels + c%channels
		for i := 0; i < channelSize; i++ {
			dst[destBase+i] = int32(src[layer+i*channels])
		}
	}
}

// scatterPlanar reverses gatherPlanar, dividing each sample by boost and
// clamping to [0, 255] before writing it back into interleaved byte layout.
func scatterPlanar(src []int32, channels, channelSize int, boost int32, dst []byte) {
	numPlanes := len(src) / channelSize
	for c := 0; c < numPlanes; c++ {
		srcBase := c * channelSize
		layer := (c/channels)*channelSize*channels + c%channels
		for i := 0; i < channelSize; i++ {
			v := clamp(src[srcBase+i]/boost, 0, 255)
			dst[layer+i*channels] = byte(v)
		}
	}
}
