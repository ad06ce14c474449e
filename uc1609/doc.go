// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package uc1609 controls a monochrome LCD via a UltraChip UC1609
// controller, as found on the common 192x64 modules.
//
// The driver keeps the whole frame in memory and sends it on every Flush(),
// there is no differential update.
//
// The device can be driven on either I²C or SPI with 4 wires. On I²C,
// commands are written to the base address (0x3C by default) and display
// data to the base address + 1. On SPI, the driver drives both the DC
// (data/command) and CS (chip select) lines itself around each transaction.
//
// The RST / Reset pin is optional. When present it is driven Low as soon as
// the device is created and pulsed during the power on sequence, otherwise a
// software reset command is sent.
//
// The frame buffer layout follows the rotation: with Rotate0 and Rotate180
// it is page ordered (frame.VerticalLSB) and the column address advances
// first. With Rotate90 and Rotate270 the page address advances first, so each
// byte holds 8 consecutive pixels of an image row, leftmost in bit 0
// (frame.HorizontalLSB), with width and height swapped.
//
// # Datasheets
//
// https://www.buydisplay.com/download/ic/UC1609.pdf
//
// Product page:
//
// https://www.buydisplay.com/serial-spi-i2c-2-inch-192x64-graphic-lcd-display-module-st7525
package uc1609
