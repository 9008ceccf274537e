// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dht20 controls a DHT20 (or the bare AHT20 it is built around) over
// I²C.
//
// The sensor measures relative humidity with a typical accuracy of ±3% RH and
// temperature with ±0.5°C. Each measurement is returned as a 7 byte frame
// protected by a CRC-8. The driver triggers a conversion, waits for the BUSY
// flag to clear, validates the frame and converts the two 20-bit raw fields to
// physical units.
//
// dht20.Dev implements physic.SenseEnv. The pressure field of physic.Env is
// never set.
//
// Call Init once after power-up. When the calibration bits of the status
// register are not set, Init runs the vendor's register reset sequence on
// 0x1B, 0x1C and 0x1E.
//
// # Known limitation
//
// By default Measure polls the BUSY flag without a bound, like the vendor's
// reference code. A sensor that never clears BUSY blocks the caller forever.
// Set Opts.BusyTimeout to bound the wait.
//
// **Datasheet:** https://aqicn.org/air/sensor/spec/asair-dht20.pdf
package dht20
