// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uc1609

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/jonboulle/clockwork"
	"github.com/wangshujun-tj/devices/uc1609/frame"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Panel limits of the controller RAM.
const (
	maxWidth  = 192
	maxHeight = 64
)

// Configuration errors, returned by NewI2C and NewSPI before any bus
// traffic. Test with errors.Is.
var (
	ErrMissingPin      = errors.New("uc1609: missing required pin")
	ErrInvalidGeometry = errors.New("uc1609: invalid panel geometry")
	ErrInvalidRotation = errors.New("uc1609: invalid rotation")
)

// BusError is returned when a transfer to the controller fails.
//
// The panel state is undefined afterward; there is no retry.
type BusError struct {
	// State is the controller state when the transfer was attempted.
	State State
	// Op describes the failed operation.
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("uc1609: %s: %s: %v", e.State, e.Op, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// DefaultOpts is the configuration of the common 192x64 module.
//
// COMEnd is left to zero so it follows H when a copy is resized.
var DefaultOpts = Opts{
	W:            192,
	H:            64,
	Rotation:     Rotate90,
	Addr:         0x3C,
	PowerManager: 0xB4,
}

// Opts defines the options for the device.
//
// A nil *Opts means DefaultOpts. Otherwise zero W, H, Addr and PowerManager
// are replaced by the value in DefaultOpts and a zero COMEnd becomes H-1.
// Rotation is used as is, so a zero Rotation is Rotate0.
type Opts struct {
	// W and H are the panel size in pixels. H must be a multiple of 8.
	W int
	H int
	// Rotation of the image. For Rotate90 and Rotate270, Bounds() is H×W.
	Rotation Rotation
	// Addr is the I²C address for commands, display data goes to Addr+1.
	Addr uint16
	// Reset is the optional hardware reset line. When nil or gpio.INVALID,
	// a software reset is sent instead.
	Reset gpio.PinOut
	// PowerManager is the PM[7:0] value, it sets the bias voltage.
	PowerManager byte
	// COMEnd is the last COM line scanned.
	COMEnd byte
	// Clock is used for the reset timings. Defaults to the real clock.
	Clock clockwork.Clock
}

// Validate returns the error NewI2C or NewSPI would return for these options
// before touching the bus.
func (o *Opts) Validate() error {
	_, err := o.resolve()
	return err
}

func (o *Opts) resolve() (*Opts, error) {
	r := DefaultOpts
	if o != nil {
		r = *o
	}
	if r.W == 0 {
		r.W = DefaultOpts.W
	}
	if r.H == 0 {
		r.H = DefaultOpts.H
	}
	if r.Addr == 0 {
		r.Addr = DefaultOpts.Addr
	}
	if r.PowerManager == 0 {
		r.PowerManager = DefaultOpts.PowerManager
	}
	if r.W < 1 || r.W > maxWidth {
		return nil, fmt.Errorf("%w: width %d", ErrInvalidGeometry, r.W)
	}
	if r.H < 8 || r.H > maxHeight || r.H&7 != 0 {
		return nil, fmt.Errorf("%w: height %d", ErrInvalidGeometry, r.H)
	}
	if r.COMEnd == 0 {
		r.COMEnd = byte(r.H - 1)
	}
	if r.Rotation > Rotate270 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRotation, r.Rotation)
	}
	if !isPin(r.Reset) {
		r.Reset = nil
	}
	if r.Clock == nil {
		r.Clock = clockwork.NewRealClock()
	}
	return &r, nil
}

// NewI2C returns a Dev object that communicates over I²C to a UC1609 display
// controller.
//
// The power on sequence is run before returning, the display is then on and
// blank.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	o, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	if err := initResetPin(o.Reset); err != nil {
		return nil, err
	}
	return newDev(newI2CTransport(b, o.Addr), o)
}

// NewSPI returns a Dev object that communicates over 4-wire SPI to a UC1609
// display controller.
//
// Both dc (data/command select) and cs (chip select) are required, the
// driver drives cs itself around every transaction.
//
// The power on sequence is run before returning, the display is then on and
// blank.
func NewSPI(p spi.Port, dc, cs gpio.PinOut, opts *Opts) (*Dev, error) {
	if !isPin(dc) {
		return nil, fmt.Errorf("%w: dc", ErrMissingPin)
	}
	if !isPin(cs) {
		return nil, fmt.Errorf("%w: cs", ErrMissingPin)
	}
	o, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	if err := initResetPin(o.Reset); err != nil {
		return nil, err
	}
	if err := dc.Out(gpio.Low); err != nil {
		return nil, err
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, err
	}
	c, err := p.Connect(8*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}
	return newDev(newSPITransport(c, dc, cs), o)
}

// Dev is an open handle to the display controller.
//
// It is not safe for concurrent use.
type Dev struct {
	t     transport
	rst   gpio.PinOut
	clock clockwork.Clock
	opts  Opts

	// buffer is the frame sent on every Flush(). Its packing depends on the
	// rotation so it can be sent without reordering.
	buffer frame.Image
	state  State

	contrast byte
	inverted bool
}

func newDev(t transport, o *Opts) (*Dev, error) {
	d := &Dev{
		t:      t,
		rst:    o.Reset,
		clock:  o.Clock,
		opts:   *o,
		buffer: frame.New(o.W, o.H, o.Rotation.swapped()),
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("uc1609.Dev{%s, %dx%d, %s}", d.t, d.opts.W, d.opts.H, d.opts.Rotation)
}

// State returns the controller state.
func (d *Dev) State() State {
	return d.state
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
//
// Width and height are swapped when rotated by 90° or 270°.
func (d *Dev) Bounds() image.Rectangle {
	return d.buffer.Bounds()
}

// Buffer returns the frame buffer. Draw on it then call Flush().
func (d *Dev) Buffer() frame.Image {
	return d.buffer
}

// Draw implements display.Drawer.
//
// It draws synchronously: the whole frame is sent before returning.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if pix := d.packed(src); pix != nil && r == d.buffer.Bounds() && src.Bounds() == r && sp == (image.Point{}) {
		// Exact size, full frame, same encoding: fast path!
		copy(d.buffer.Bytes(), pix)
	} else {
		draw.Src.Draw(d.buffer, r, src, sp)
	}
	return d.Flush()
}

// Write writes a packed frame to the display.
//
// The format is the one of Buffer().Bytes(): VerticalLSB for Rotate0 and
// Rotate180, HorizontalLSB otherwise.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.buffer.Bytes()) {
		return 0, fmt.Errorf("uc1609: invalid pixel stream length; expected %d bytes, got %d bytes", len(d.buffer.Bytes()), len(pixels))
	}
	copy(d.buffer.Bytes(), pixels)
	if err := d.Flush(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Flush sends the whole frame buffer to the display RAM.
//
// The RAM address is always reset to the origin first.
func (d *Dev) Flush() error {
	for _, c := range [...]byte{setPageAddress, setColumnHigh, setColumnLow} {
		if err := d.sendCommand(c); err != nil {
			return err
		}
	}
	return d.sendData(d.buffer.Bytes())
}

// PowerOn turns the display on.
func (d *Dev) PowerOn() error {
	if err := d.sendCommand(setDisplayOn); err != nil {
		return err
	}
	d.state = PoweredOn
	return nil
}

// PowerOff turns the display off. The RAM content is retained and Flush()
// keeps updating it.
func (d *Dev) PowerOff() error {
	if err := d.sendCommand(setDisplayOff); err != nil {
		return err
	}
	d.state = PoweredOff
	return nil
}

// Halt implements conn.Resource. It turns the display off.
func (d *Dev) Halt() error {
	return d.PowerOff()
}

// SetContrast changes the contrast. Only the 3 lower bits of level are
// used.
func (d *Dev) SetContrast(level byte) error {
	level &= 0x07
	if err := d.sendCommand(setContrast | level); err != nil {
		return err
	}
	d.contrast = level
	return nil
}

// Contrast returns the last contrast level set.
func (d *Dev) Contrast() byte {
	return d.contrast
}

// Invert the display (black on white vs white on black).
func (d *Dev) Invert(blackOnWhite bool) error {
	var flag byte
	if blackOnWhite {
		flag = 1
	}
	if err := d.sendCommand(setInverse | flag); err != nil {
		return err
	}
	d.inverted = blackOnWhite
	return nil
}

// Inverted returns the last value passed to Invert.
func (d *Dev) Inverted() bool {
	return d.inverted
}

func (d *Dev) sendCommand(c byte) error {
	if err := d.t.command(c); err != nil {
		return &BusError{State: d.state, Op: fmt.Sprintf("command %#02x", c), Err: err}
	}
	return nil
}

func (d *Dev) sendData(p []byte) error {
	if err := d.t.data(p); err != nil {
		return &BusError{State: d.state, Op: fmt.Sprintf("data %d bytes", len(p)), Err: err}
	}
	return nil
}

func isPin(p gpio.PinOut) bool {
	return p != nil && p != gpio.INVALID
}

// initResetPin sets the reset line as an output at Low before any protocol
// traffic.
func initResetPin(rst gpio.PinOut) error {
	if rst == nil {
		return nil
	}
	if err := rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("uc1609: reset pin: %w", err)
	}
	return nil
}

// packed returns the pixel storage of src when it is packed like the frame
// buffer, nil otherwise.
func (d *Dev) packed(src image.Image) []byte {
	_, vertical := d.buffer.(*frame.VerticalLSB)
	switch img := src.(type) {
	case *frame.VerticalLSB:
		if vertical {
			return img.Pix
		}
	case *image1bit.VerticalLSB:
		if vertical {
			return img.Pix
		}
	case *frame.HorizontalLSB:
		if !vertical {
			return img.Pix
		}
	}
	return nil
}

var _ display.Drawer = &Dev{}
var _ io.Writer = &Dev{}
