// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package climate is a container for the DHT20 humidity/temperature driver
// and the tools built on it.
//
// See package dht20 for the driver, screen1d for the terminal gauge and
// cmd/dht20poll for the serial poller.
package climate
