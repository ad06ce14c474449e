// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uc1609

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Timings of the power on sequence.
const (
	resetPulse   = 10 * time.Millisecond
	resetRecover = 100 * time.Millisecond
	settleDelay  = 10 * time.Millisecond
)

// State is the position of the controller in its power on sequence.
type State uint8

// Possible states. A Dev returned by NewI2C or NewSPI is PoweredOn.
const (
	Uninitialized State = iota
	Resetting
	Configuring
	Cleared
	PoweredOn
	PoweredOff
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Resetting:
		return "resetting"
	case Configuring:
		return "configuring"
	case Cleared:
		return "cleared"
	case PoweredOn:
		return "powered on"
	case PoweredOff:
		return "powered off"
	default:
		return "unknown"
	}
}

// initCommands returns the configuration sequence sent after reset, one
// command byte per transaction.
//
// The display is turned off first so stale RAM content is never shown.
func initCommands(opts *Opts) []byte {
	scan := opts.Rotation.scanCommands()
	return []byte{
		setDisplayOff,
		setTempCompensation,
		setPowerControl,
		setBiasRatio,
		setPowerManager, opts.PowerManager,
		setScrollLine,
		setAnalogControl, analogControlParam,
		setLineCorrection,
		setCOMEnd, opts.COMEnd,
		scan[0], // Mirroring
		scan[1], // RAM address auto increment
	}
}

// init runs the power on sequence: reset, configuration, a blank frame, then
// display on.
func (d *Dev) init() error {
	d.state = Resetting
	if err := d.reset(); err != nil {
		return err
	}
	d.clock.Sleep(settleDelay)

	d.state = Configuring
	for _, c := range initCommands(&d.opts) {
		if err := d.sendCommand(c); err != nil {
			return err
		}
	}

	d.buffer.Fill(image1bit.Off)
	if err := d.Flush(); err != nil {
		return err
	}
	d.state = Cleared

	if err := d.sendCommand(setDisplayOn); err != nil {
		return err
	}
	d.state = PoweredOn
	return nil
}

// reset pulses the reset line when there's one, otherwise it sends a
// software reset.
func (d *Dev) reset() error {
	if d.rst == nil {
		return d.sendCommand(systemReset)
	}
	for _, step := range []struct {
		l     gpio.Level
		sleep time.Duration
	}{
		{gpio.High, resetPulse},
		{gpio.Low, resetRecover},
		{gpio.High, 0},
	} {
		if err := d.rst.Out(step.l); err != nil {
			return &BusError{State: d.state, Op: "reset " + step.l.String(), Err: err}
		}
		if step.sleep != 0 {
			d.clock.Sleep(step.sleep)
		}
	}
	return nil
}
