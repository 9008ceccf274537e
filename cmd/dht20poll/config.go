// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// blink is how long the LED stays off before each measurement.
const blink = 100 * time.Millisecond

// Config holds the poller settings.
type Config struct {
	AppEnv   string
	LogLevel slog.Level

	I2CBus      string
	BusyTimeout time.Duration

	SerialPort string
	BaudRate   int
	Interval   time.Duration
	LEDPin     string
	Gauge      string
}

// LoadFromEnv reads the configuration through getenv, usually os.Getenv.
func LoadFromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	appEnv := get("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	baudStr := get("DHT20_BAUD", "115200")
	baud, err := strconv.Atoi(baudStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DHT20_BAUD %q: %w", baudStr, err)
	}

	intervalStr := get("DHT20_INTERVAL", "500ms")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DHT20_INTERVAL %q: %w", intervalStr, err)
	}

	busyStr := get("DHT20_BUSY_TIMEOUT", "0")
	busy, err := time.ParseDuration(busyStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DHT20_BUSY_TIMEOUT %q: %w", busyStr, err)
	}

	cfg := Config{
		AppEnv:      appEnv,
		LogLevel:    level,
		I2CBus:      get("DHT20_I2C_BUS", ""),
		BusyTimeout: busy,
		SerialPort:  get("DHT20_SERIAL_PORT", ""),
		BaudRate:    baud,
		Interval:    interval,
		LEDPin:      get("DHT20_LED_PIN", ""),
		Gauge:       get("DHT20_GAUGE", "auto"),
	}
	return cfg, cfg.Validate()
}

// RegisterFlags binds command line overrides to cfg, using its current
// values as defaults.
func (cfg *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&cfg.I2CBus, "bus", cfg.I2CBus, "I²C bus to use")
	fs.StringVar(&cfg.SerialPort, "port", cfg.SerialPort, "serial port for readings, stdout when empty")
	fs.IntVar(&cfg.BaudRate, "baud", cfg.BaudRate, "serial port baud rate")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "time between two readings")
	fs.DurationVar(&cfg.BusyTimeout, "busy-timeout", cfg.BusyTimeout, "give up on a busy sensor after this long, 0 waits forever")
	fs.StringVar(&cfg.LEDPin, "led", cfg.LEDPin, "GPIO pin blinked at every reading")
	fs.StringVar(&cfg.Gauge, "gauge", cfg.Gauge, "terminal gauge: auto, on or off")
}

// Validate checks values that can come from either the environment or flags.
func (cfg *Config) Validate() error {
	if cfg.BaudRate <= 0 {
		return fmt.Errorf("baud rate must be positive, got %d", cfg.BaudRate)
	}
	if cfg.Interval < blink {
		return fmt.Errorf("interval must be at least %v, got %v", blink, cfg.Interval)
	}
	if cfg.BusyTimeout < 0 {
		return fmt.Errorf("busy timeout must not be negative, got %v", cfg.BusyTimeout)
	}
	switch cfg.Gauge {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("invalid gauge mode %q (allowed: auto, on, off)", cfg.Gauge)
	}
	return nil
}

// gaugeEnabled decides whether the gauge owns stdout. In auto mode it does
// when readings go to a serial port and stdout is a terminal.
func (cfg *Config) gaugeEnabled(stdoutIsTerminal bool) bool {
	switch cfg.Gauge {
	case "on":
		return true
	case "auto":
		return cfg.SerialPort != "" && stdoutIsTerminal
	}
	return false
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
