// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uc1609

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

// transport sends command and display data bytes to the controller.
type transport interface {
	fmt.Stringer
	command(c byte) error
	data(p []byte) error
}

// i2cTransport addresses commands to the base address and display data to
// the base address + 1, which is how the controller tells them apart on I²C.
type i2cTransport struct {
	cmds  i2c.Dev
	pixel i2c.Dev
}

func newI2CTransport(b i2c.Bus, addr uint16) *i2cTransport {
	return &i2cTransport{
		cmds:  i2c.Dev{Bus: b, Addr: addr},
		pixel: i2c.Dev{Bus: b, Addr: addr + 1},
	}
}

func (t *i2cTransport) String() string {
	return t.cmds.String()
}

func (t *i2cTransport) command(c byte) error {
	return t.cmds.Tx([]byte{c}, nil)
}

func (t *i2cTransport) data(p []byte) error {
	return t.pixel.Tx(p, nil)
}

// spiTransport frames every transaction with CS and selects between command
// (DC Low) and display data (DC High).
type spiTransport struct {
	c  spi.Conn
	dc gpio.PinOut
	cs gpio.PinOut
	// maxTxSize is 0 when the port doesn't advertise a limit.
	maxTxSize int
}

func newSPITransport(c spi.Conn, dc, cs gpio.PinOut) *spiTransport {
	t := &spiTransport{c: c, dc: dc, cs: cs}
	if l, ok := c.(conn.Limits); ok {
		t.maxTxSize = l.MaxTxSize()
	}
	return t
}

func (t *spiTransport) String() string {
	return fmt.Sprintf("%s, %s, %s", t.c, t.dc, t.cs)
}

func (t *spiTransport) command(c byte) error {
	return t.tx(gpio.Low, []byte{c})
}

func (t *spiTransport) data(p []byte) error {
	return t.tx(gpio.High, p)
}

func (t *spiTransport) tx(dc gpio.Level, p []byte) error {
	eh := errorHandler{t: t}
	eh.dcOut(dc)
	eh.csOut(gpio.Low)
	for len(p) != 0 {
		n := len(p)
		if t.maxTxSize > 0 && n > t.maxTxSize {
			n = t.maxTxSize
		}
		eh.cTx(p[:n])
		p = p[n:]
	}
	// CS is always released so the next transaction starts from a clean
	// state.
	if err := t.cs.Out(gpio.High); eh.err == nil {
		eh.err = err
	}
	return eh.err
}

// errorHandler latches the first error; once set, further calls are no-ops.
type errorHandler struct {
	t   *spiTransport
	err error
}

func (eh *errorHandler) dcOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.t.dc.Out(l)
}

func (eh *errorHandler) csOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.t.cs.Out(l)
}

func (eh *errorHandler) cTx(w []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.t.c.Tx(w, nil)
}
