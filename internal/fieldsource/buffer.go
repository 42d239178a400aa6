package fieldsource

import "fmt"

// Buffer holds one field's samples for a single channel as a dense
// row-major 16-bit plane.
type Buffer struct {
	Width   int
	Height  int
	Samples []uint16
}

// NewBuffer allocates a zeroed buffer for the given geometry.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{Width: width, Height: height, Samples: make([]uint16, width*height)}
}

// Line returns the samples of one line as a subslice of the backing plane.
// Mutating the result mutates the buffer.
func (b *Buffer) Line(line int) []uint16 {
	if line < 0 || line >= b.Height {
		return nil
	}
	off := line * b.Width
	return b.Samples[off : off+b.Width]
}

// At returns the sample at (line, sample) or zero when out of bounds.
func (b *Buffer) At(line, sample int) uint16 {
	if line < 0 || line >= b.Height || sample < 0 || sample >= b.Width {
		return 0
	}
	return b.Samples[line*b.Width+sample]
}

// Clone returns an independent deep copy.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	clone := &Buffer{Width: b.Width, Height: b.Height, Samples: make([]uint16, len(b.Samples))}
	copy(clone.Samples, b.Samples)
	return clone
}

// Equal reports whether two buffers have identical geometry and samples.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.Width != other.Width || b.Height != other.Height || len(b.Samples) != len(other.Samples) {
		return false
	}
	for i, v := range b.Samples {
		if other.Samples[i] != v {
			return false
		}
	}
	return true
}

func (b *Buffer) String() string {
	return fmt.Sprintf("buffer %dx%d", b.Width, b.Height)
}
