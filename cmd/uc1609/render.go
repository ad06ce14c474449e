// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/wangshujun-tj/devices/uc1609"
	"github.com/wangshujun-tj/devices/uc1609/frame"
	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

type contraster interface {
	SetContrast(level byte) error
}

// textLine is a line of text drawn at row y, scaled by scale.
type textLine struct {
	format string
	y      float64
	scale  float64
}

// textPages are shown in sequence, each for the requested number of frames.
// The frame count is passed to format.
var textPages = [][]textLine{
	{
		{"micro=%d", 0, 1},
		{"micro=%d", 13, 1},
		{"micro=%d", 26, 1},
		{"micro=%d", 39, 1},
		{"micro=%d", 51, 1},
	},
	{
		{"MicRo=%d", 0, 1},
		{"MicRo=%d", 16, 1.2},
		{"MicRo=%d", 32, 1.2},
		{"micro=%d", 48, 1},
	},
	{
		{"MRo=%d", 0, 2},
		{"MRo=%d", 32, 2},
	},
	{
		{"MR=%d", 0, 2.4},
		{"Mo=%d", 32, 2.4},
	},
}

// demo draws the frames on d.
type demo struct {
	d      display.Drawer
	frame  frame.Image
	face   font.Face
	logo   image.Image
	frames int
	delay  time.Duration
}

func (m *demo) run() error {
	for i, page := range textPages {
		log.Printf("Text page %d", i)
		for n := 0; n < m.frames; n++ {
			if err := m.show(m.text(page, n)); err != nil {
				return err
			}
		}
	}
	log.Printf("Bitmap slides")
	for _, s := range slides(m.logo.Bounds().Size()) {
		m.frame.Fill(image1bit.Off)
		for _, p := range s {
			m.frame.Blit(p, m.logo, m.logo.Bounds().Min)
		}
		if err := m.show(m.frame); err != nil {
			return err
		}
	}
	return nil
}

func (m *demo) show(img image.Image) error {
	if err := m.d.Draw(m.d.Bounds(), img, image.Point{}); err != nil {
		return err
	}
	if m.delay != 0 {
		time.Sleep(m.delay)
	}
	return nil
}

// text renders a page of text, white on black.
func (m *demo) text(page []textLine, n int) image.Image {
	b := m.d.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(m.face)
	for _, l := range page {
		dc.Push()
		dc.Scale(l.scale, l.scale)
		dc.DrawStringAnchored(fmt.Sprintf(l.format, n), 0, l.y/l.scale, 0, 1)
		dc.Pop()
	}
	return dc.Image()
}

// slides returns the positions of the bitmap for each frame: diagonally,
// then horizontally, then two copies vertically. It starts fully off screen.
func slides(size image.Point) [][]image.Point {
	var out [][]image.Point
	for i := 0; i <= size.Y; i++ {
		out = append(out, []image.Point{{X: i*3 - size.X, Y: i*2 - size.Y}})
	}
	for i := 0; i <= size.Y; i++ {
		out = append(out, []image.Point{{X: i*3 - size.X, Y: 0}})
	}
	for i := 0; i <= size.Y; i++ {
		out = append(out, []image.Point{{X: 32, Y: i*2 - size.Y}, {X: 96, Y: i*2 - size.Y}})
	}
	return out
}

// newFrame returns a frame buffer in the same layout as the controller uses
// for the rotation, so drawing it is a plain copy.
func newFrame(o *uc1609.Opts) frame.Image {
	return frame.New(o.W, o.H, o.Rotation == uc1609.Rotate90 || o.Rotation == uc1609.Rotate270)
}

// loadFace returns basicfont 7x13 when path is empty.
func loadFace(path string, size float64) (font.Face, error) {
	if path == "" {
		return basicfont.Face7x13, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingFull}), nil
}

// loadBitmap decodes a BMP file, or generates a logo when path is empty.
func loadBitmap(path string) (image.Image, error) {
	if path == "" {
		return logo(64), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// logo draws a size×size sprite on a transparent background.
func logo(size int) image.Image {
	s := float64(size)
	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(3)
	dc.DrawCircle(s/2, s/2, s/2-2)
	dc.Stroke()
	dc.DrawRoundedRectangle(s/4, s/4, s/2, s/2, s/10)
	dc.Fill()
	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawStringAnchored("UC", s/2, s/2, 0.5, 0.35)
	return dc.Image()
}
