// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices is a container for display drivers built on periph.io.
//
// uc1609 drives UC1609 monochrome LCD panels over I²C or SPI, with its
// frame buffer in uc1609/frame. screen2d previews the same frames on a
// terminal, and cmd/uc1609 is a demo tool for both.
package devices
