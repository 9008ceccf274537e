// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, the CRC8 calculation that protects DHT20/AHT20 measurement frames.
package common

// crc8Polynomial is x^8 + x^5 + x^4 + 1 with the x^8 term dropped.
const crc8Polynomial = 0x31

// CRC8 calculates the 8-bit CRC of the byte slice parameter and returns the
// calculated value. The register starts at 0xff, bits are processed MSB first
// and there is no final xor. CRC bytes are used in sensors from Aosong, TI and
// Sensirion.
func CRC8(bytes []byte) byte {
	var crc byte = 0xff
	for _, val := range bytes {
		crc ^= val
		for range 8 {
			if (crc & 0x80) == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ crc8Polynomial
			}
		}
	}
	return crc
}

// AppendCRC8 returns bytes with its CRC8 appended.
func AppendCRC8(bytes []byte) []byte {
	return append(bytes, CRC8(bytes))
}

// CheckCRC8 reports whether the last byte of frame is the CRC8 of the bytes
// preceding it. An empty frame never checks.
func CheckCRC8(frame []byte) bool {
	if len(frame) == 0 {
		return false
	}
	n := len(frame) - 1
	return CRC8(frame[:n]) == frame[n]
}
