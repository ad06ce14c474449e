// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen2d implements a 2D display.Drawer that outputs to terminal
// (stdout) using ANSI color codes.
//
// Useful to preview frames meant for a small LCD or OLED panel without the
// hardware at hand.
package screen2d

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	W       int
	H       int
	Palette *ansi256.Palette
	// Out defaults to stdout.
	Out io.Writer

	_ struct{}
}

// Dev is a 2D display emulator that outputs to the console.
//
// Each frame is drawn over the previous one.
type Dev struct {
	w       io.Writer
	palette ansi256.Palette

	img    *image.NRGBA
	buf    bytes.Buffer
	frames int
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		palette: *p,
		img:     image.NewNRGBA(image.Rect(0, 0, opts.W, opts.H)),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("Screen2D{%dx%d}", d.img.Rect.Dx(), d.img.Rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// Write accepts a stream of raw RGB pixels, row by row, and writes it to the
// console.
func (d *Dev) Write(pixels []byte) (int, error) {
	r := d.img.Rect
	if len(pixels) != 3*r.Dx()*r.Dy() {
		return 0, fmt.Errorf("screen2d: invalid RGB stream length; expected %d bytes, got %d bytes", 3*r.Dx()*r.Dy(), len(pixels))
	}
	for i := 0; i < len(pixels)/3; i++ {
		copy(d.img.Pix[4*i:], pixels[3*i:3*i+3])
		d.img.Pix[4*i+3] = 255
	}
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.img.Rect
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(d.img, r, src, sp, draw.Src)
	return d.refresh()
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	r := d.img.Rect
	if d.frames != 0 {
		// Move back to the top left of the previous frame.
		_, _ = fmt.Fprintf(&d.buf, "\033[%dA", r.Dy())
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := r.Min.X; x < r.Max.X; x++ {
			_, _ = io.WriteString(&d.buf, d.palette.Block(d.img.NRGBAAt(x, y)))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.frames++
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
