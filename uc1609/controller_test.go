// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uc1609

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

type record struct {
	cmd  byte
	data []byte
}

// fakeTransport records commands with the display data that follows them.
// When fail is non zero, the fail-th transfer and all following ones return
// errBus.
type fakeTransport struct {
	records []record
	calls   int
	fail    int
}

var errBus = errors.New("bus is on fire")

func (f *fakeTransport) String() string {
	return "fake"
}

func (f *fakeTransport) command(c byte) error {
	f.calls++
	if f.fail != 0 && f.calls >= f.fail {
		return errBus
	}
	f.records = append(f.records, record{cmd: c})
	return nil
}

func (f *fakeTransport) data(p []byte) error {
	f.calls++
	if f.fail != 0 && f.calls >= f.fail {
		return errBus
	}
	cur := &f.records[len(f.records)-1]
	cur.data = append(cur.data, p...)
	return nil
}

func diffRecords(got, want []record) string {
	return cmp.Diff(got, want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{}))
}

func flushRecords(frame []byte) []record {
	return []record{
		{cmd: setPageAddress},
		{cmd: setColumnHigh},
		{cmd: setColumnLow, data: frame},
	}
}

func TestInitCommands(t *testing.T) {
	resized := DefaultOpts
	resized.W, resized.H = 128, 32
	for _, tc := range []struct {
		name string
		opts Opts
		want []byte
	}{
		{
			name: "default",
			opts: DefaultOpts,
			want: []byte{0xAE, 0x24, 0x2C, 0xEB, 0x81, 0xB4, 0x40, 0x33, 0x2A, 0xC4, 0xF1, 0x3F, 0xC0, 0x8B},
		},
		{
			// COMEnd follows the height of a resized copy of DefaultOpts.
			name: "default, 32 rows",
			opts: resized,
			want: []byte{0xAE, 0x24, 0x2C, 0xEB, 0x81, 0xB4, 0x40, 0x33, 0x2A, 0xC4, 0xF1, 0x1F, 0xC0, 0x8B},
		},
		{
			// A zero Rotation is Rotate0, not the DefaultOpts rotation.
			name: "0°",
			opts: Opts{W: 192, H: 64},
			want: []byte{0xAE, 0x24, 0x2C, 0xEB, 0x81, 0xB4, 0x40, 0x33, 0x2A, 0xC4, 0xF1, 0x3F, 0xC4, 0x89},
		},
		{
			name: "180°",
			opts: Opts{W: 192, H: 64, Rotation: Rotate180},
			want: []byte{0xAE, 0x24, 0x2C, 0xEB, 0x81, 0xB4, 0x40, 0x33, 0x2A, 0xC4, 0xF1, 0x3F, 0xC2, 0x89},
		},
		{
			name: "270°, 32 rows",
			opts: Opts{W: 128, H: 32, Rotation: Rotate270, PowerManager: 0x90},
			want: []byte{0xAE, 0x24, 0x2C, 0xEB, 0x81, 0x90, 0x40, 0x33, 0x2A, 0xC4, 0xF1, 0x1F, 0xC6, 0x8B},
		},
		{
			name: "COMEnd",
			opts: Opts{W: 192, H: 64, Rotation: Rotate0, COMEnd: 0x2F},
			want: []byte{0xAE, 0x24, 0x2C, 0xEB, 0x81, 0xB4, 0x40, 0x33, 0x2A, 0xC4, 0xF1, 0x2F, 0xC4, 0x89},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			o, err := tc.opts.resolve()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(initCommands(o), tc.want); diff != "" {
				t.Errorf("initCommands() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestDefaultOpts(t *testing.T) {
	if DefaultOpts.COMEnd != 0 {
		t.Errorf("DefaultOpts.COMEnd = %#x, want 0", DefaultOpts.COMEnd)
	}
	o, err := DefaultOpts.resolve()
	if err != nil {
		t.Fatal(err)
	}
	if o.COMEnd != 0x3F {
		t.Errorf("COMEnd = %#x, want 0x3f", o.COMEnd)
	}
}

func TestInit(t *testing.T) {
	o, err := DefaultOpts.resolve()
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeTransport{}
	d, err := newDev(f, o)
	if err != nil {
		t.Fatal(err)
	}

	want := []record{{cmd: systemReset}}
	for _, c := range initCommands(o) {
		want = append(want, record{cmd: c})
	}
	want = append(want, flushRecords(make([]byte, 192*64/8))...)
	want = append(want, record{cmd: setDisplayOn})
	if diff := diffRecords(f.records, want); diff != "" {
		t.Errorf("init difference (-got +want):\n%s", diff)
	}
	if s := d.State(); s != PoweredOn {
		t.Errorf("State() = %s, want %s", s, PoweredOn)
	}
}

func TestInitBusError(t *testing.T) {
	// Transfers: 1 soft reset, 2-15 configuration, 16-19 blank frame, 20
	// display on.
	for _, tc := range []struct {
		fail int
		want State
	}{
		{fail: 1, want: Resetting},
		{fail: 2, want: Configuring},
		{fail: 15, want: Configuring},
		{fail: 19, want: Configuring},
		{fail: 20, want: Cleared},
	} {
		t.Run(tc.want.String(), func(t *testing.T) {
			o, err := DefaultOpts.resolve()
			if err != nil {
				t.Fatal(err)
			}
			d, err := newDev(&fakeTransport{fail: tc.fail}, o)
			if d != nil {
				t.Error("expected no device")
			}
			var be *BusError
			if !errors.As(err, &be) {
				t.Fatalf("expected *BusError, got %v", err)
			}
			if be.State != tc.want {
				t.Errorf("BusError.State = %s, want %s", be.State, tc.want)
			}
			if !errors.Is(err, errBus) {
				t.Errorf("expected wrapped bus error, got %v", err)
			}
		})
	}
}

func TestResetPin(t *testing.T) {
	clk := clockwork.NewFakeClock()
	log := &traceLog{}
	rst := &tracePin{PinOut: &gpiotest.Pin{N: "RST"}, name: "RST", log: log}
	bus := &i2ctest.Record{}
	opts := DefaultOpts
	opts.Reset = rst
	opts.Clock = clk

	type result struct {
		d   *Dev
		err error
	}
	done := make(chan result)
	go func() {
		d, err := NewI2C(bus, &opts)
		done <- result{d, err}
	}()

	for _, step := range []struct {
		want    []string
		advance time.Duration
	}{
		{want: []string{"RST=Low", "RST=High"}, advance: resetPulse},
		{want: []string{"RST=Low", "RST=High", "RST=Low"}, advance: resetRecover},
		{want: []string{"RST=Low", "RST=High", "RST=Low", "RST=High"}, advance: settleDelay},
	} {
		clk.BlockUntil(1)
		if diff := cmp.Diff(log.get(), step.want); diff != "" {
			t.Fatalf("reset pin difference (-got +want):\n%s", diff)
		}
		bus.Lock()
		n := len(bus.Ops)
		bus.Unlock()
		if n != 0 {
			t.Fatalf("%d bus transfers before reset completed", n)
		}
		clk.Advance(step.advance)
	}

	r := <-done
	if r.err != nil {
		t.Fatal(r.err)
	}
	// No software reset when the line is wired.
	if got := bus.Ops[0].W; !cmp.Equal(got, []byte{setDisplayOff}) {
		t.Errorf("first transfer = %#x, want %#x", got, setDisplayOff)
	}
	if s := r.d.State(); s != PoweredOn {
		t.Errorf("State() = %s, want %s", s, PoweredOn)
	}
}

func TestResetPinError(t *testing.T) {
	o, err := DefaultOpts.resolve()
	if err != nil {
		t.Fatal(err)
	}
	o.Reset = &failingPin{PinOut: &gpiotest.Pin{N: "RST"}, failAt: 1}
	o.Clock = clockwork.NewRealClock()
	f := &fakeTransport{}
	_, err = newDev(f, o)
	var be *BusError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BusError, got %v", err)
	}
	if be.State != Resetting || be.Op != "reset High" {
		t.Errorf("unexpected error %v", be)
	}
	if len(f.records) != 0 {
		t.Errorf("unexpected transfers %v", f.records)
	}
}

func TestFlushImage(t *testing.T) {
	for _, tc := range []struct {
		name     string
		rotation Rotation
		want     func(b []byte)
	}{
		{
			name:     "0°",
			rotation: Rotate0,
			want: func(b []byte) {
				// First pixel is bit 0 of the first byte, last pixel is bit 7 of
				// the last page.
				b[0] = 0x01
				b[7*192+191] = 0x80
			},
		},
		{
			name:     "90°",
			rotation: Rotate90,
			want: func(b []byte) {
				// 64 pixels wide, 192 rows of 8 bytes, leftmost pixel in bit 0.
				b[0] = 0x01
				b[191*8+7] = 0x80
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOpts
			opts.Rotation = tc.rotation
			o, err := opts.resolve()
			if err != nil {
				t.Fatal(err)
			}
			f := &fakeTransport{}
			d, err := newDev(f, o)
			if err != nil {
				t.Fatal(err)
			}
			f.records = nil
			r := d.Bounds()
			d.Buffer().SetBit(0, 0, image1bit.On)
			d.Buffer().SetBit(r.Max.X-1, r.Max.Y-1, image1bit.On)
			if err := d.Flush(); err != nil {
				t.Fatal(err)
			}
			want := make([]byte, 192*64/8)
			tc.want(want)
			if diff := diffRecords(f.records, flushRecords(want)); diff != "" {
				t.Errorf("Flush() difference (-got +want):\n%s", diff)
			}
		})
	}
}

// panelPixels decodes a frame the way the controller stores it in RAM for
// the given auto increment command and returns the lit pixels, X being the
// column and Y the row (page*8+bit) before any mirroring.
func panelPixels(frame []byte, w, h int, autoInc byte) []image.Point {
	pages := h / 8
	var lit []image.Point
	for k, v := range frame {
		page, column := k/w, k%w
		if autoInc == setAutoIncPage {
			page, column = k%pages, k/pages
		}
		for bit := 0; bit < 8; bit++ {
			if v&(1<<uint(bit)) != 0 {
				lit = append(lit, image.Pt(column, page*8+bit))
			}
		}
	}
	return lit
}

func TestFlushPanelPosition(t *testing.T) {
	for _, tc := range []struct {
		name     string
		rotation Rotation
		pixels   []image.Point
		want     []image.Point
	}{
		{
			name:     "0°",
			rotation: Rotate0,
			pixels:   []image.Point{image.Pt(7, 0), image.Pt(8, 0), image.Pt(0, 9)},
			want:     []image.Point{image.Pt(0, 9), image.Pt(7, 0), image.Pt(8, 0)},
		},
		{
			// Image columns are panel rows, image rows are panel columns.
			name:     "90°",
			rotation: Rotate90,
			pixels:   []image.Point{image.Pt(7, 0), image.Pt(8, 0), image.Pt(0, 5), image.Pt(63, 191)},
			want:     []image.Point{image.Pt(0, 7), image.Pt(0, 8), image.Pt(5, 0), image.Pt(191, 63)},
		},
		{
			name:     "270°",
			rotation: Rotate270,
			pixels:   []image.Point{image.Pt(1, 0), image.Pt(15, 2)},
			want:     []image.Point{image.Pt(0, 1), image.Pt(2, 15)},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, f := newTestDev(t, tc.rotation)
			for _, p := range tc.pixels {
				d.Buffer().SetBit(p.X, p.Y, image1bit.On)
			}
			if err := d.Flush(); err != nil {
				t.Fatal(err)
			}
			if len(f.records) != 3 {
				t.Fatalf("unexpected transfers %v", f.records)
			}
			got := panelPixels(f.records[2].data, d.opts.W, d.opts.H, tc.rotation.scanCommands()[1])
			less := func(a, b image.Point) bool { return a.X < b.X || (a.X == b.X && a.Y < b.Y) }
			if diff := cmp.Diff(got, tc.want, cmpopts.SortSlices(less)); diff != "" {
				t.Errorf("panel pixels difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestRuntimeCommands(t *testing.T) {
	o, err := DefaultOpts.resolve()
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeTransport{}
	d, err := newDev(f, o)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name      string
		run       func() error
		want      byte
		wantState State
	}{
		{"contrast 4", func() error { return d.SetContrast(4) }, 0x24, PoweredOn},
		// Only the 3 lower bits are kept.
		{"contrast 9", func() error { return d.SetContrast(9) }, 0x21, PoweredOn},
		{"contrast 1", func() error { return d.SetContrast(1) }, 0x21, PoweredOn},
		{"invert", func() error { return d.Invert(true) }, 0x21, PoweredOn},
		{"normal", func() error { return d.Invert(false) }, 0x21, PoweredOn},
		{"off", d.PowerOff, 0xAE, PoweredOff},
		{"on", d.PowerOn, 0xAF, PoweredOn},
		{"halt", d.Halt, 0xAE, PoweredOff},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f.records = nil
			if err := tc.run(); err != nil {
				t.Fatal(err)
			}
			if diff := diffRecords(f.records, []record{{cmd: tc.want}}); diff != "" {
				t.Errorf("difference (-got +want):\n%s", diff)
			}
			if s := d.State(); s != tc.wantState {
				t.Errorf("State() = %s, want %s", s, tc.wantState)
			}
		})
	}
	if c := d.Contrast(); c != 1 {
		t.Errorf("Contrast() = %d, want 1", c)
	}
	if d.Inverted() {
		t.Error("Inverted() = true")
	}
}

func TestFlushWhilePoweredOff(t *testing.T) {
	o, err := DefaultOpts.resolve()
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeTransport{}
	d, err := newDev(f, o)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.PowerOff(); err != nil {
		t.Fatal(err)
	}
	f.records = nil
	d.Buffer().Fill(image1bit.On)
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	want := make([]byte, 192*64/8)
	for i := range want {
		want[i] = 0xFF
	}
	if diff := diffRecords(f.records, flushRecords(want)); diff != "" {
		t.Errorf("Flush() difference (-got +want):\n%s", diff)
	}
	if s := d.State(); s != PoweredOff {
		t.Errorf("State() = %s, want %s", s, PoweredOff)
	}
}

func TestRuntimeBusError(t *testing.T) {
	o, err := DefaultOpts.resolve()
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeTransport{}
	d, err := newDev(f, o)
	if err != nil {
		t.Fatal(err)
	}
	f.fail = f.calls + 1
	err = d.SetContrast(3)
	var be *BusError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BusError, got %v", err)
	}
	if want := "uc1609: powered on: command 0x23: bus is on fire"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if c := d.Contrast(); c != 0 {
		t.Errorf("Contrast() = %d, want 0", c)
	}
	if err := d.PowerOff(); err == nil {
		t.Error("expected error")
	}
	if s := d.State(); s != PoweredOn {
		t.Errorf("State() = %s, want %s", s, PoweredOn)
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{
		Uninitialized: "uninitialized",
		Resetting:     "resetting",
		Configuring:   "configuring",
		Cleared:       "cleared",
		PoweredOn:     "powered on",
		PoweredOff:    "powered off",
		State(42):     "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", uint8(s), got, want)
		}
	}
}
