// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht20

import (
	"github.com/GermanBionicSystems/climate/common"
)

const (
	frameSize = 7
	// fullScale is 2^20, the span of both raw fields.
	fullScale = 1048576.0
)

// Reading is one measurement converted to physical units.
type Reading struct {
	// Humidity is the relative humidity in percent, [0, 100].
	Humidity float32
	// Temperature is in degrees Celsius, [-50, 150].
	Temperature float32
}

// Decode validates a 7 byte measurement frame and converts it.
func Decode(frame []byte) (Reading, error) {
	if len(frame) != frameSize {
		return Reading{}, &FrameLengthError{Len: len(frame)}
	}
	if !common.CheckCRC8(frame) {
		return Reading{}, &DataCorruptionError{Want: common.CRC8(frame[:frameSize-1]), Got: frame[frameSize-1]}
	}
	return Reading{
		Humidity:    HumidityFromRaw(RawHumidity(frame)),
		Temperature: TemperatureFromRaw(RawTemperature(frame)),
	}, nil
}

// RawHumidity extracts the 20-bit humidity field: bytes 1..3 as a 24-bit big
// endian value without its low nibble.
func RawHumidity(frame []byte) uint32 {
	return (uint32(frame[1])<<16 | uint32(frame[2])<<8 | uint32(frame[3])) >> 4
}

// RawTemperature extracts the 20-bit temperature field: the low nibble of
// byte 3 followed by bytes 4 and 5.
func RawTemperature(frame []byte) uint32 {
	return (uint32(frame[3])&0x0F)<<16 | uint32(frame[4])<<8 | uint32(frame[5])
}

// HumidityFromRaw converts a raw 20-bit humidity value to %RH.
func HumidityFromRaw(raw uint32) float32 {
	return float32(float64(raw) * 100 / fullScale)
}

// TemperatureFromRaw converts a raw 20-bit temperature value to °C.
func TemperatureFromRaw(raw uint32) float32 {
	return float32(float64(raw)*200/fullScale - 50)
}
