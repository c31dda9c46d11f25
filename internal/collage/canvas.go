package collage

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// canvas is a disk-backed RGBA buffer. Print-resolution renders
// multiply out to tens of megabytes per canvas, which a memory map
// keeps off the Go heap.
type canvas struct {
	*image.RGBA
	file   *os.File
	mapped mmap.MMap
}

// newCanvas allocates a white w×h canvas backed by a temp file.
func newCanvas(w, h int) (*canvas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}

	f, err := os.CreateTemp("", "collage-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create canvas backing file: %w", err)
	}
	if err := f.Truncate(int64(w * h * 4)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("size canvas backing file: %w", err)
	}

	mapped, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("map canvas: %w", err)
	}

	c := &canvas{
		RGBA: &image.RGBA{
			Pix:    mapped,
			Stride: w * 4,
			Rect:   image.Rect(0, 0, w, h),
		},
		file:   f,
		mapped: mapped,
	}
	draw.Draw(c.RGBA, c.Rect, image.NewUniform(color.RGBA{255, 255, 255, 255}), image.Point{}, draw.Src)
	return c, nil
}

// Close unmaps and removes the backing file. The canvas must not be
// used afterwards.
func (c *canvas) Close() {
	c.mapped.Unmap()
	c.file.Close()
	os.Remove(c.file.Name())
}
