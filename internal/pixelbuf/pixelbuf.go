// Package pixelbuf implements the dense RGB pixel buffer that the mode
// decoders write into and that a host reads back, partially or in full, at
// any time.
package pixelbuf

import "sync"

// Buffer is a width x height grid of RGB triplets, each channel in
// [0.0, 1.0]. It is safe for concurrent reads while a single writer drives
// the decode; rows above LinesWritten are zero.
type Buffer struct {
	mu sync.RWMutex

	width  int
	height int
	pixels []float32 // len == width*height*3, row-major, RGB interleaved

	linesWritten int
}

// New allocates a zero-initialised width x height buffer.
func New(width, height int) *Buffer {
	return &Buffer{
		width:  width,
		height: height,
		pixels: make([]float32, width*height*3),
	}
}

// Width returns the buffer's pixel width.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer's pixel height.
func (b *Buffer) Height() int { return b.height }

// LinesWritten returns one past the highest line index written so far
// (the maximum of y+1 over every WriteRow). Rows below it are not
// necessarily all written; rows at or above it never were.
func (b *Buffer) LinesWritten() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.linesWritten
}

// WriteRow stores one row of width*3 RGB values (already clamped to
// [0, 1]) at line y and advances LinesWritten monotonically.
func (b *Buffer) WriteRow(y int, rgb []float32) {
	if y < 0 || y >= b.height {
		return
	}
	if len(rgb) != b.width*3 {
		panic("pixelbuf: WriteRow got wrong-sized row")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	copy(b.pixels[y*b.width*3:(y+1)*b.width*3], rgb)
	if y+1 > b.linesWritten {
		b.linesWritten = y + 1
	}
}

// Row returns a copy of the RGB triplets for line y (width*3 float32s).
// Rows at or above LinesWritten read back as zero.
func (b *Buffer) Row(y int) []float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	row := make([]float32, b.width*3)
	if y < 0 || y >= b.height {
		return row
	}
	copy(row, b.pixels[y*b.width*3:(y+1)*b.width*3])
	return row
}

// Snapshot returns a read-only copy of the full pixel grid, safe for an
// observer to retain past the controller's lifetime.
func (b *Buffer) Snapshot() []float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]float32, len(b.pixels))
	copy(out, b.pixels)
	return out
}

// Len returns width*height*3, the invariant pixel-buffer length.
func (b *Buffer) Len() int {
	return b.width * b.height * 3
}
