// Package chunk implements GFWX's chunked 2-D view over a planar sample
// buffer: an iterator that partitions each channel plane into chunk_size²
// blocks, and a per-chunk accessor that enforces which lattice points a
// chunk may read or write so that concurrent chunks can share the
// underlying buffer without a lock.
//
// A chunk's writable lattice is exactly the set of points
// Chunk.isWriteableZone reports at the chunk's step: the comb of rows
// and columns the entropy coder assigns to that resolution level. A chunk
// may always read any point (including neighbors outside its own box); it
// may only write points that are both inside its own box (owned) and on
// the writable lattice (owned by this step, not a finer one).
package chunk

import "fmt"

// Image is a planar view over a flat sample buffer: channels consecutive
// width*height planes.
type Image struct {
	Data     []int32
	Width    int
	Height   int
	Channels int
}

// NewImage wraps data as an Image. data must be at least
// width*height*channels long.
func NewImage(data []int32, width, height, channels int) Image {
	return Image{Data: data, Width: width, Height: height, Channels: channels}
}

// Chunks partitions the image into chunkSize×chunkSize boxes, one set per
// channel, in row-major then channel order — the same enumeration order
// the reference chunk iterator produces. step is the resolution-level
// comb stride each chunk's writable lattice is computed against.
func (img Image) Chunks(chunkSize, step int) []*Chunk {
	var chunks []*Chunk
	channelSize := img.Width * img.Height

	for channel := 0; channel < img.Channels; channel++ {
		channelStart := channel * channelSize
		for y := 0; y < img.Height; y += chunkSize {
			yEnd := min(y+chunkSize, img.Height)
			for x := 0; x < img.Width; x += chunkSize {
				xEnd := min(x+chunkSize, img.Width)
				chunks = append(chunks, &Chunk{
					data:          img.Data,
					imageWidth:    img.Width,
					channelSize:   channelSize,
					channelStart:  channelStart,
					Channel:       channel,
					XRange:        [2]int{x, xEnd},
					YRange:        [2]int{y, yEnd},
					Step:          step,
				})
			}
		}
	}
	return chunks
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Chunk is one chunkSize×chunkSize box of a single channel plane, sharing
// the image's underlying buffer with every other chunk. Reads are
// unrestricted; writes are only permitted within the chunk's own box, and
// only at points on its resolution level's writable lattice.
type Chunk struct {
	data         []int32
	imageWidth   int
	channelSize  int
	channelStart int

	Channel int
	XRange  [2]int
	YRange  [2]int
	Step    int
}

// Get reads sample (y, x) within this chunk's channel. Any in-bounds point
// is readable, including neighbors outside the chunk's own box — lifting
// and entropy coding both need to see coarser-level neighbor samples a
// finer chunk does not own.
func (c *Chunk) Get(y, x int) int32 {
	idx := c.index(y, x)
	return c.data[idx]
}

// Set writes sample (y, x). It panics if (y, x) is not both owned by this
// chunk and on its step's writable lattice, mirroring the reference
// implementation's debug assertions — a violation here is a programming
// error in the caller, not a data error.
func (c *Chunk) Set(y, x int, v int32) {
	if !(c.isOwnedZone(y, x) && c.isWriteableZone(y, x)) {
		panic(fmt.Sprintf("chunk: write to non-owned or non-writable point (%d,%d)", y, x))
	}
	c.data[c.index(y, x)] = v
}

func (c *Chunk) index(y, x int) int {
	idx := c.channelStart + y*c.imageWidth + x
	if idx >= c.channelStart+c.channelSize {
		panic("chunk: cross-channel index")
	}
	return idx
}

// isWriteableZone reports whether (y, x) sits on this chunk's resolution
// level's writable lattice: the chunk's own corner (x_range.0, y_range.0)
// always qualifies; beyond that, a point qualifies when its row is a
// multiple of Step and its column sits on that row's predict/update comb,
// matching the same x_step alternation the quant and dwt packages use.
func (c *Chunk) isWriteableZone(y, x int) bool {
	if y == c.YRange[0] && x == c.XRange[0] {
		return true
	}
	if y%c.Step != 0 {
		return false
	}
	xStep := c.Step
	if y&c.Step == 0 {
		xStep = c.Step * 2
	}
	return (x+(xStep-c.Step))%xStep == 0
}

// isOwnedZone reports whether (y, x) falls inside this chunk's own box.
func (c *Chunk) isOwnedZone(y, x int) bool {
	return x >= c.XRange[0] && x < c.XRange[1] && y >= c.YRange[0] && y < c.YRange[1]
}
