// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// uc1609 runs a demo on a UC1609 LCD: text at several sizes, then a bitmap
// scrolling across the screen.
//
// Use -bus term to preview on the terminal without a panel.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/wangshujun-tj/devices/screen2d"
	"github.com/wangshujun-tj/devices/uc1609"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

func parseRotation(s string) (uc1609.Rotation, error) {
	switch s {
	case "0":
		return uc1609.Rotate0, nil
	case "90", "cw":
		return uc1609.Rotate90, nil
	case "180", "flip":
		return uc1609.Rotate180, nil
	case "270", "ccw":
		return uc1609.Rotate270, nil
	}
	return 0, fmt.Errorf("invalid rotation %q", s)
}

// openDisplay returns the display and a function to close its bus.
func openDisplay(bus string, opts *uc1609.Opts, i2cName, spiName, dcName, csName string) (display.Drawer, func() error, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	switch bus {
	case "term":
		b := newFrame(opts).Bounds()
		return screen2d.New(&screen2d.Opts{W: b.Dx(), H: b.Dy()}), func() error { return nil }, nil
	case "i2c":
		b, err := i2creg.Open(i2cName)
		if err != nil {
			return nil, nil, err
		}
		d, err := uc1609.NewI2C(b, opts)
		if err != nil {
			b.Close()
			return nil, nil, err
		}
		return d, b.Close, nil
	case "spi":
		p, err := spireg.Open(spiName)
		if err != nil {
			return nil, nil, err
		}
		// A pin not found is nil and reported by NewSPI.
		d, err := uc1609.NewSPI(p, gpioreg.ByName(dcName), gpioreg.ByName(csName), opts)
		if err != nil {
			p.Close()
			return nil, nil, err
		}
		return d, p.Close, nil
	}
	return nil, nil, fmt.Errorf("invalid bus %q", bus)
}

func mainImpl() error {
	bus := flag.String("bus", "i2c", "bus to use: i2c, spi or term")
	i2cName := flag.String("i2c", "", "I²C bus to use")
	addr := flag.Uint("addr", 0x3C, "I²C command address, display data goes to addr+1")
	spiName := flag.String("spi", "", "SPI port to use")
	dcName := flag.String("dc", "GPIO25", "SPI data/command pin")
	csName := flag.String("cs", "GPIO8", "SPI chip select pin")
	rstName := flag.String("reset", "", "reset pin; a software reset is sent when empty")
	w := flag.Int("w", 192, "panel width")
	h := flag.Int("h", 64, "panel height, a multiple of 8")
	rotate := flag.String("rotate", "270", "rotation: 0, 90, 180, 270, cw, ccw or flip")
	contrast := flag.Uint("contrast", 4, "contrast, 0 to 7")
	fontPath := flag.String("font", "", "TrueType font file; basicfont 7x13 when empty")
	fontSize := flag.Float64("size", 12, "TrueType font size in points")
	bmpPath := flag.String("bmp", "", "BMP image to scroll; a generated logo when empty")
	frames := flag.Int("frames", 10, "frames per text page")
	delay := flag.Duration("delay", 0, "pause after each frame")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	rot, err := parseRotation(*rotate)
	if err != nil {
		return err
	}
	if *addr > 0x7E {
		return errors.New("-addr must be a 7 bits I²C address below 0x7F")
	}
	face, err := loadFace(*fontPath, *fontSize)
	if err != nil {
		return err
	}
	logo, err := loadBitmap(*bmpPath)
	if err != nil {
		return err
	}

	opts := uc1609.DefaultOpts
	opts.W = *w
	opts.H = *h
	opts.Rotation = rot
	opts.Addr = uint16(*addr)
	if *bus != "term" {
		if _, err := host.Init(); err != nil {
			return err
		}
		if *rstName != "" {
			p := gpioreg.ByName(*rstName)
			if p == nil {
				return errors.New("invalid -reset pin " + strconv.Quote(*rstName))
			}
			opts.Reset = p
		}
	}

	d, closeBus, err := openDisplay(*bus, &opts, *i2cName, *spiName, *dcName, *csName)
	if err != nil {
		return err
	}
	defer closeBus()
	log.Printf("Using %s", d)

	if c, ok := d.(contraster); ok {
		if err := c.SetContrast(byte(*contrast)); err != nil {
			return err
		}
	}
	m := &demo{
		d:      d,
		frame:  newFrame(&opts),
		face:   face,
		logo:   logo,
		frames: *frames,
		delay:  *delay,
	}
	err = m.run()
	if err2 := d.Halt(); err == nil {
		err = err2
	}
	return err
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "uc1609: %s.\n", err)
		os.Exit(1)
	}
}
