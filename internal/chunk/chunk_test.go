package chunk

import "testing"

func TestChunksPartitionWholeImage(t *testing.T) {
	const width, height, channels = 10, 7, 2
	data := make([]int32, width*height*channels)
	img := NewImage(data, width, height, channels)

	chunks := img.Chunks(4, 1)

	seen := make(map[[3]int]bool)
	for _, c := range chunks {
		for y := c.YRange[0]; y < c.YRange[1]; y++ {
			for x := c.XRange[0]; x < c.XRange[1]; x++ {
				key := [3]int{c.Channel, y, x}
				if seen[key] {
					t.Fatalf("point %v covered by more than one chunk", key)
				}
				seen[key] = true
			}
		}
	}

	if len(seen) != width*height*channels {
		t.Fatalf("chunks covered %d points, want %d", len(seen), width*height*channels)
	}
}

func TestChunkWriteRequiresOwnedAndWritable(t *testing.T) {
	const width, height = 8, 8
	data := make([]int32, width*height)
	img := NewImage(data, width, height, 1)
	chunks := img.Chunks(4, 2)

	c := chunks[0]

	// The chunk's own corner is always writable.
	c.Set(c.YRange[0], c.XRange[0], 42)
	if got := c.Get(c.YRange[0], c.XRange[0]); got != 42 {
		t.Fatalf("got %d want 42", got)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic writing to a non-owned point")
		}
	}()
	c.Set(c.YRange[1], c.XRange[0], 1)
}

func TestChunkReadIsUnrestricted(t *testing.T) {
	const width, height = 8, 8
	data := make([]int32, width*height)
	for i := range data {
		data[i] = int32(i)
	}
	img := NewImage(data, width, height, 1)
	chunks := img.Chunks(4, 2)

	c := chunks[0]
	// Reading outside the chunk's own box must not panic.
	got := c.Get(height-1, width-1)
	if got != data[(height-1)*width+(width-1)] {
		t.Fatalf("got %d want %d", got, data[(height-1)*width+(width-1)])
	}
}
