// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht20

import "fmt"

// BusError is returned when an I²C transaction did not complete. Err is the
// error reported by the bus, untouched.
type BusError struct {
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("dht20: %s: %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// DataCorruptionError is returned when the trailing byte of a measurement
// frame does not match the CRC8 of the preceding 6 bytes.
type DataCorruptionError struct {
	Want byte
	Got  byte
}

func (e *DataCorruptionError) Error() string {
	return fmt.Sprintf("dht20: data is corrupt, crc8 %#02x != %#02x", e.Got, e.Want)
}

// ReadTimeoutError is returned when Opts.BusyTimeout is set and the sensor
// is still busy after it.
type ReadTimeoutError struct{}

func (e *ReadTimeoutError) Error() string {
	return "dht20: read timeout, measurement did not finish in time"
}

// FrameLengthError is returned by Decode for a frame that is not 7 bytes.
type FrameLengthError struct {
	Len int
}

func (e *FrameLengthError) Error() string {
	return fmt.Sprintf("dht20: frame is %d bytes, expected %d", e.Len, frameSize)
}
