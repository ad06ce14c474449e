// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package frame implements the 1 bit per pixel frame buffers sent as is to
// the display RAM of a UC1609 controller.
//
// Pixels are image1bit.Bit from periph.io/x/devices/v3/ssd1306/image1bit.
// Two packings are provided:
//
// VerticalLSB wraps image1bit.VerticalLSB. It stores horizontal bands
// ("pages") of 8 pixels high. Each byte holds 8 vertically stacked pixels,
// the top one in the least significant bit. Byte index is (y/8)*width + x.
// This is the RAM layout when the controller increments columns first.
//
// HorizontalLSB stores rows. Each byte holds 8 horizontally adjacent pixels,
// the leftmost one in the least significant bit. Byte index is
// y*ceil(width/8) + x/8. This is the layout used for a panel turned by 90°
// or 270°: the controller then increments pages first, so each image row is
// a panel column and each byte is a page byte whose bit 0 is the top row of
// the page, the image x axis running down the panel.
//
// Both implement draw.Image so text, bitmaps and vector output produced by
// image/draw, golang.org/x/image/font or any other drawing library can be
// composed into them directly. Pixels outside the image bounds are silently
// dropped.
package frame
