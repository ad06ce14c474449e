// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package frame

import (
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Image is a packed 1 bit image whose storage can be sent as is to a display
// controller.
type Image interface {
	draw.Image

	// BitAt returns the pixel at (x, y). Pixels outside the bounds are Off.
	BitAt(x, y int) image1bit.Bit
	// SetBit sets the pixel at (x, y). Pixels outside the bounds are ignored.
	SetBit(x, y int, b image1bit.Bit)
	// Fill sets every pixel of the image.
	Fill(b image1bit.Bit)
	// FillRect sets every pixel of r that is inside the image.
	FillRect(r image.Rectangle, b image1bit.Bit)
	// Blit copies src, starting at sp, to the image at dp. Fully transparent
	// source pixels are skipped and pixels falling outside the image are
	// clipped.
	Blit(dp image.Point, src image.Image, sp image.Point)
	// Bytes returns the packed pixel storage. It is not a copy.
	Bytes() []byte
}

// New returns a frame for a panel of w columns and h rows.
//
// When rotated is false, the image is a VerticalLSB of w×h. When rotated is
// true, which is the case for a panel turned by 90° or 270°, the image is a
// HorizontalLSB of h×w. Since the controller RAM is organized in pages of 8
// rows, h must be a multiple of 8 and then both images use exactly
// (h/8)*w bytes.
func New(w, h int, rotated bool) Image {
	if rotated {
		return NewHorizontalLSB(image.Rect(0, 0, h, w))
	}
	return NewVerticalLSB(image.Rect(0, 0, w, h))
}

// VerticalLSB is an image1bit.VerticalLSB with the Image helpers.
type VerticalLSB struct {
	*image1bit.VerticalLSB
}

// NewVerticalLSB returns an initialized VerticalLSB instance, all pixels Off.
func NewVerticalLSB(r image.Rectangle) *VerticalLSB {
	return &VerticalLSB{VerticalLSB: image1bit.NewVerticalLSB(r)}
}

// Opaque implements image.Image. A 1 bit image has no transparency.
func (i *VerticalLSB) Opaque() bool {
	return true
}

// Fill implements Image.
func (i *VerticalLSB) Fill(b image1bit.Bit) {
	fill(i.Pix, b)
}

// FillRect implements Image.
//
// It works a page at a time, touching each byte once.
func (i *VerticalLSB) FillRect(r image.Rectangle, b image1bit.Bit) {
	r = r.Intersect(i.Rect).Sub(i.Rect.Min)
	for y := r.Min.Y; y < r.Max.Y; {
		page := y / 8
		end := min((page+1)*8, r.Max.Y)
		lo := uint(y - page*8)
		hi := uint(end - page*8)
		mask := byte((1<<hi)-1) &^ byte((1<<lo)-1)
		row := i.Pix[page*i.Stride+r.Min.X : page*i.Stride+r.Max.X]
		for x := range row {
			if b {
				row[x] |= mask
			} else {
				row[x] &^= mask
			}
		}
		y = end
	}
}

// Blit implements Image.
func (i *VerticalLSB) Blit(dp image.Point, src image.Image, sp image.Point) {
	blit(i, dp, src, sp)
}

// Bytes implements Image.
func (i *VerticalLSB) Bytes() []byte {
	return i.Pix
}

// HorizontalLSB is a 1 bit image where each byte covers 8 horizontal pixels,
// the least significant bit being the leftmost one.
type HorizontalLSB struct {
	// Pix holds the image's pixels, as a row major LSB-first packed bitmap.
	Pix []byte
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// NewHorizontalLSB returns an initialized HorizontalLSB instance, all pixels
// Off.
func NewHorizontalLSB(r image.Rectangle) *HorizontalLSB {
	stride := (r.Dx() + 7) / 8
	return &HorizontalLSB{Pix: make([]byte, stride*r.Dy()), Stride: stride, Rect: r}
}

// ColorModel implements image.Image.
func (i *HorizontalLSB) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements image.Image.
func (i *HorizontalLSB) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *HorizontalLSB) At(x, y int) color.Color {
	return i.BitAt(x, y)
}

// BitAt is the optimized version of At().
func (i *HorizontalLSB) BitAt(x, y int) image1bit.Bit {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return image1bit.Off
	}
	offset, mask := i.PixOffset(x, y)
	return i.Pix[offset]&mask != 0
}

// Opaque implements image.Image.
func (i *HorizontalLSB) Opaque() bool {
	return true
}

// PixOffset returns the index of the byte holding (x, y) and the bit mask of
// the pixel in that byte. (x, y) must be inside the bounds.
func (i *HorizontalLSB) PixOffset(x, y int) (int, byte) {
	x -= i.Rect.Min.X
	y -= i.Rect.Min.Y
	return y*i.Stride + x/8, 1 << uint(x&7)
}

// Set implements draw.Image
func (i *HorizontalLSB) Set(x, y int, c color.Color) {
	i.SetBit(x, y, toBit(c))
}

// SetBit is the optimized version of Set().
func (i *HorizontalLSB) SetBit(x, y int, b image1bit.Bit) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return
	}
	offset, mask := i.PixOffset(x, y)
	if b {
		i.Pix[offset] |= mask
	} else {
		i.Pix[offset] &^= mask
	}
}

// Fill implements Image.
func (i *HorizontalLSB) Fill(b image1bit.Bit) {
	fill(i.Pix, b)
}

// FillRect implements Image.
func (i *HorizontalLSB) FillRect(r image.Rectangle, b image1bit.Bit) {
	r = r.Intersect(i.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i.SetBit(x, y, b)
		}
	}
}

// Blit implements Image.
func (i *HorizontalLSB) Blit(dp image.Point, src image.Image, sp image.Point) {
	blit(i, dp, src, sp)
}

// Bytes implements Image.
func (i *HorizontalLSB) Bytes() []byte {
	return i.Pix
}

//

type bitImage interface {
	BitAt(x, y int) image1bit.Bit
}

func fill(pix []byte, b image1bit.Bit) {
	v := byte(0)
	if b {
		v = 0xFF
	}
	for i := range pix {
		pix[i] = v
	}
}

// blit aligns sp in src with dp in dst and copies the overlapping area.
func blit(dst Image, dp image.Point, src image.Image, sp image.Point) {
	delta := sp.Sub(dp)
	r := src.Bounds().Sub(delta).Intersect(dst.Bounds())
	if s, ok := src.(bitImage); ok {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				dst.SetBit(x, y, s.BitAt(x+delta.X, y+delta.Y))
			}
		}
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := src.At(x+delta.X, y+delta.Y)
			if _, _, _, a := c.RGBA(); a == 0 {
				continue
			}
			dst.SetBit(x, y, toBit(c))
		}
	}
}

func toBit(c color.Color) image1bit.Bit {
	return image1bit.BitModel.Convert(c).(image1bit.Bit)
}

var _ Image = &VerticalLSB{}
var _ Image = &HorizontalLSB{}
