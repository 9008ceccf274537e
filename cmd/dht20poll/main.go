// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// dht20poll reads a DHT20 humidity/temperature sensor at a fixed interval and
// writes one line per reading to a serial port or stdout:
//
//	RH=45.8% T=19.4C
//
// Failed measurements are written as "ERR crc", "ERR bus" or "ERR timeout".
//
// Settings come from DHT20_* environment variables and can be overridden by
// flags; run with -help for the list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/GermanBionicSystems/climate/dht20"
	"github.com/GermanBionicSystems/climate/screen1d"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var version = "dev"

const appName = "dht20poll"

func mainImpl(ctx context.Context, cfg Config, log *slog.Logger) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("host init: %w", err)
	}

	b, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("open I²C bus %q: %w", cfg.I2CBus, err)
	}
	defer b.Close()

	dev := dht20.NewI2C(b, &dht20.Opts{BusyTimeout: cfg.BusyTimeout})
	if err := dev.Init(); err != nil {
		log.Error("sensor init failed", "bus", b.String(), "err", err)
	} else {
		log.Info("sensor initialized", "bus", b.String())
	}

	out, err := openOutput(cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	p := &poller{
		sensor:   dev,
		delay:    dev.Delay(),
		out:      out,
		interval: cfg.Interval,
		log:      log,
	}

	if cfg.LEDPin != "" {
		pin := gpioreg.ByName(cfg.LEDPin)
		if pin == nil {
			return fmt.Errorf("unknown LED pin %q", cfg.LEDPin)
		}
		if err := pin.Out(gpio.High); err != nil {
			return fmt.Errorf("LED pin %s: %w", pin, err)
		}
		p.led = pin
	}

	if cfg.gaugeEnabled(screen1d.IsTerminal(os.Stdout)) {
		p.gauge = screen1d.New(nil, &screen1d.Opts{X: 40})
		defer p.gauge.Halt()
	}

	log.Info("polling", "interval", cfg.Interval, "port", cfg.SerialPort, "baud", cfg.BaudRate)
	return p.run(ctx)
}

func main() {
	cfg, err := LoadFromEnv(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg, os.Stderr, screen1d.IsTerminal(os.Stderr))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mainImpl(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
	slog.Info("shutting down")
}
