// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/climate/dht20"
	"github.com/GermanBionicSystems/climate/screen1d"
	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// events is a shared log of what the fakes below were asked to do.
type events []string

type fakeDelay struct{ ev *events }

func (f fakeDelay) Sleep(d time.Duration) { *f.ev = append(*f.ev, "sleep "+d.String()) }

type fakeLED struct {
	gpiotest.Pin
	ev *events
}

func (f *fakeLED) Out(l gpio.Level) error {
	*f.ev = append(*f.ev, "led "+l.String())
	return f.Pin.Out(l)
}

type result struct {
	r   dht20.Reading
	err error
}

type fakeSensor struct {
	ev      *events
	results []result
	after   func(n int)
	n       int
}

func (f *fakeSensor) Measure() (dht20.Reading, error) {
	*f.ev = append(*f.ev, "measure")
	res := f.results[f.n%len(f.results)]
	f.n++
	if f.after != nil {
		f.after(f.n)
	}
	return res.r, res.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPoller_Run(t *testing.T) {
	ev := &events{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := &fakeSensor{
		ev: ev,
		results: []result{
			{r: dht20.Reading{Humidity: 45.83, Temperature: 19.44}},
			{err: &dht20.DataCorruptionError{Want: 0x12, Got: 0x13}},
		},
		after: func(n int) {
			if n == 2 {
				cancel()
			}
		},
	}
	led := &fakeLED{Pin: gpiotest.Pin{N: "LED"}, ev: ev}
	var out bytes.Buffer
	p := &poller{sensor: s, delay: fakeDelay{ev}, out: &out, led: led, interval: 500 * time.Millisecond, log: discardLogger()}
	if err := p.run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("run() = %v", err)
	}
	if want := "RH=45.8% T=19.4C\r\nERR crc\r\n"; out.String() != want {
		t.Errorf("output %q, want %q", out.String(), want)
	}
	cycle := []string{"led Low", "sleep 100ms", "led High", "measure", "sleep 400ms"}
	if diff := cmp.Diff(append(append([]string{}, cycle...), cycle...), []string(*ev)); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	if led.L != gpio.High {
		t.Error("LED left off")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("port gone") }

func TestPoller_WriteError(t *testing.T) {
	ev := &events{}
	s := &fakeSensor{ev: ev, results: []result{{r: dht20.Reading{Humidity: 1, Temperature: 2}}}}
	p := &poller{sensor: s, delay: fakeDelay{ev}, out: failingWriter{}, interval: time.Second, log: discardLogger()}
	err := p.run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "port gone") {
		t.Fatalf("run() = %v", err)
	}
	if s.n != 1 {
		t.Errorf("%d measurements after a failed write", s.n)
	}
}

func TestPoller_Gauge(t *testing.T) {
	ev := &events{}
	var out, term bytes.Buffer
	s := &fakeSensor{ev: ev, results: []result{{r: dht20.Reading{Humidity: 50, Temperature: 20}}}}
	p := &poller{
		sensor:   s,
		delay:    fakeDelay{ev},
		out:      &out,
		gauge:    screen1d.New(&term, &screen1d.Opts{X: 8}),
		interval: blink,
		log:      discardLogger(),
	}
	if err := p.cycle(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(term.String(), " 50.0%RH  20.00°C") {
		t.Errorf("gauge output %q", term.String())
	}
	if diff := cmp.Diff([]string{"sleep 100ms", "measure"}, []string(*ev)); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&dht20.DataCorruptionError{}, "ERR crc\r\n"},
		{&dht20.BusError{Op: "read status", Err: errors.New("nack")}, "ERR bus\r\n"},
		{fmt.Errorf("cycle: %w", &dht20.ReadTimeoutError{}), "ERR timeout\r\n"},
		{errors.New("other"), "ERR unknown\r\n"},
	}
	for _, tc := range tests {
		if got := formatError(tc.err); got != tc.want {
			t.Errorf("formatError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestFormatReading(t *testing.T) {
	if got := formatReading(dht20.Reading{Humidity: 100, Temperature: -50}); got != "RH=100.0% T=-50.0C\r\n" {
		t.Errorf("formatReading() = %q", got)
	}
}
