// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"go.bug.st/serial"
)

// openSerial opens a port in 8N1 mode. It's a variable so tests can replace
// it.
var openSerial = func(port string, baud int) (io.WriteCloser, error) {
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	return p, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// openOutput returns where readings are written: the configured serial port,
// or stdout.
func openOutput(cfg Config) (io.WriteCloser, error) {
	if cfg.SerialPort == "" {
		return nopCloser{os.Stdout}, nil
	}
	return openSerial(cfg.SerialPort, cfg.BaudRate)
}
