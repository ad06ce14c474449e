// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uc1609

import "fmt"

// Commands
const (
	setColumnLow        byte = 0x00 // | column[3:0]
	setColumnHigh       byte = 0x10 // | column[7:4]
	setContrast         byte = 0x20 // | level[2:0]
	setInverse          byte = 0x21 // | flag
	setTempCompensation byte = 0x24
	setPowerControl     byte = 0x2C
	setAnalogControl    byte = 0x33 // followed by 0x2A
	analogControlParam  byte = 0x2A
	setScrollLine       byte = 0x40 // | line[5:0]
	setPowerManager     byte = 0x81 // followed by PM[7:0]
	setAutoIncColumn    byte = 0x89 // column address advances first
	setAutoIncPage      byte = 0x8B // page address advances first
	setDisplayOff       byte = 0xAE
	setDisplayOn        byte = 0xAF
	setPageAddress      byte = 0xB0 // | page[3:0]
	setMappingNone      byte = 0xC0
	setMappingColumn    byte = 0xC2
	setMappingRow       byte = 0xC4
	setMappingBoth      byte = 0xC6
	setLineCorrection   byte = 0xC4
	systemReset         byte = 0xE2
	setBiasRatio        byte = 0xEB
	setCOMEnd           byte = 0xF1 // followed by COM end
)

// Rotation is the rotation of the image relative to the panel wiring.
type Rotation uint8

// Supported rotations.
const (
	Rotate0   Rotation = iota // No rotation
	Rotate90                  // Rotate 90°
	Rotate180                 // Rotate 180°
	Rotate270                 // Rotate 270°
)

func (r Rotation) String() string {
	switch r {
	case Rotate0:
		return "0°"
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	default:
		return fmt.Sprintf("Rotation(%d)", uint8(r))
	}
}

// swapped reports whether the frame buffer has width and height swapped
// relative to the panel.
func (r Rotation) swapped() bool {
	return r == Rotate90 || r == Rotate270
}

// scanCommands returns the mapping (mirroring) command followed by the RAM
// address auto increment command for the rotation.
func (r Rotation) scanCommands() [2]byte {
	switch r {
	case Rotate90:
		return [2]byte{setMappingNone, setAutoIncPage}
	case Rotate180:
		return [2]byte{setMappingColumn, setAutoIncColumn}
	case Rotate270:
		return [2]byte{setMappingBoth, setAutoIncPage}
	default:
		return [2]byte{setMappingRow, setAutoIncColumn}
	}
}
