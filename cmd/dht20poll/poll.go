// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/GermanBionicSystems/climate/dht20"
	"github.com/GermanBionicSystems/climate/screen1d"
	"periph.io/x/conn/v3/gpio"
)

type sensor interface {
	Measure() (dht20.Reading, error)
}

// poller blinks the LED, takes a reading and writes one CRLF terminated line
// per interval.
type poller struct {
	sensor   sensor
	delay    dht20.Delayer
	out      io.Writer
	led      gpio.PinOut
	gauge    *screen1d.Dev
	interval time.Duration
	log      *slog.Logger
}

// run loops until ctx is done or the output fails. Measurement errors are
// reported on the output and the next cycle triggers a new measurement.
func (p *poller) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := p.cycle(); err != nil {
			return err
		}
	}
}

func (p *poller) cycle() error {
	p.setLED(gpio.Low)
	p.delay.Sleep(blink)
	p.setLED(gpio.High)

	var line string
	r, err := p.sensor.Measure()
	if err != nil {
		p.log.Warn("measurement failed", "err", err)
		line = formatError(err)
	} else {
		p.log.Debug("measurement", "humidity", r.Humidity, "temperature", r.Temperature)
		line = formatReading(r)
		if p.gauge != nil {
			if err := p.gauge.Show(r); err != nil {
				p.log.Warn("gauge", "err", err)
			}
		}
	}
	if _, err := io.WriteString(p.out, line); err != nil {
		return fmt.Errorf("write reading: %w", err)
	}

	if rest := p.interval - blink; rest > 0 {
		p.delay.Sleep(rest)
	}
	return nil
}

func (p *poller) setLED(l gpio.Level) {
	if p.led == nil {
		return
	}
	if err := p.led.Out(l); err != nil {
		p.log.Warn("led", "err", err)
	}
}

func formatReading(r dht20.Reading) string {
	return fmt.Sprintf("RH=%.1f%% T=%.1fC\r\n", r.Humidity, r.Temperature)
}

func formatError(err error) string {
	var (
		busErr     *dht20.BusError
		crcErr     *dht20.DataCorruptionError
		timeoutErr *dht20.ReadTimeoutError
	)
	reason := "unknown"
	switch {
	case errors.As(err, &crcErr):
		reason = "crc"
	case errors.As(err, &busErr):
		reason = "bus"
	case errors.As(err, &timeoutErr):
		reason = "timeout"
	}
	return "ERR " + reason + "\r\n"
}
