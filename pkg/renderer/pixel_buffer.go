package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var (
	// ErrPixelOutOfBounds is returned when a pixel coordinate lies outside the buffer
	ErrPixelOutOfBounds = errors.New("pixel out of bounds")
	// ErrPixelAlreadyWritten is returned when a pixel is delivered twice
	ErrPixelAlreadyWritten = errors.New("pixel already written")
)

// PixelBuffer is a width x height RGB image in which every pixel is written exactly once.
// It is owned by a single collector goroutine and is not safe for concurrent writes.
type PixelBuffer struct {
	width   int
	height  int
	pix     []uint8 // 3 bytes per pixel, row-major, row 0 at the top
	written []bool
	count   int
}

// NewPixelBuffer allocates an empty buffer
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		width:   width,
		height:  height,
		pix:     make([]uint8, width*height*3),
		written: make([]bool, width*height),
	}
}

// Width returns the buffer width in pixels
func (pb *PixelBuffer) Width() int {
	return pb.width
}

// Height returns the buffer height in pixels
func (pb *PixelBuffer) Height() int {
	return pb.height
}

// PutPixel stores the color of pixel (x, y)
func (pb *PixelBuffer) PutPixel(x, y int, rgb [3]uint8) error {
	if x < 0 || x >= pb.width || y < 0 || y >= pb.height {
		return fmt.Errorf("put (%d,%d) in %dx%d buffer: %w", x, y, pb.width, pb.height, ErrPixelOutOfBounds)
	}
	index := y*pb.width + x
	if pb.written[index] {
		return fmt.Errorf("put (%d,%d): %w", x, y, ErrPixelAlreadyWritten)
	}

	copy(pb.pix[index*3:index*3+3], rgb[:])
	pb.written[index] = true
	pb.count++
	return nil
}

// At returns the color of pixel (x, y)
func (pb *PixelBuffer) At(x, y int) [3]uint8 {
	i := (y*pb.width + x) * 3
	return [3]uint8{pb.pix[i], pb.pix[i+1], pb.pix[i+2]}
}

// Written returns the number of pixels stored so far
func (pb *PixelBuffer) Written() int {
	return pb.count
}

// Complete reports whether every pixel has been written
func (pb *PixelBuffer) Complete() bool {
	return pb.count == pb.width*pb.height
}

// Bytes returns a copy of the raw RGB data
func (pb *PixelBuffer) Bytes() []uint8 {
	return append([]uint8(nil), pb.pix...)
}

// Image converts the buffer to an opaque RGBA image for encoding
func (pb *PixelBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, pb.width, pb.height))
	for y := 0; y < pb.height; y++ {
		for x := 0; x < pb.width; x++ {
			rgb := pb.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255})
		}
	}
	return img
}
