// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht20

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddress is the fixed I²C address of the sensor.
const DefaultAddress uint16 = 0x38

const (
	cmdStatus   byte = 0x71
	cmdMeasure  byte = 0xAC
	cmdCalReset byte = 0xB0
)

const (
	bitBusy        byte = 1 << 7
	maskCalibrated byte = 0x18
)

// Registers rewritten by the calibration reset, in order.
var calibrationRegisters = [...]byte{0x1B, 0x1C, 0x1E}

var argsMeasure = []byte{cmdMeasure, 0x33, 0x00}

// Delays from the datasheet.
const (
	powerOnDelay       = 100 * time.Millisecond
	conversionDelay    = 85 * time.Millisecond
	busyPollInterval   = 2 * time.Millisecond
	resetReadDelay     = 5 * time.Millisecond
	resetWriteDelay    = 10 * time.Millisecond
	calibrationSettled = 10 * time.Millisecond
)

// Delayer blocks the caller for d. clock.Clock implements it.
type Delayer interface {
	Sleep(d time.Duration)
}

// Opts holds the configuration options for the device.
type Opts struct {
	// Delay provides every wait issued by the driver. nil uses the wall clock.
	Delay Delayer
	// BusyTimeout bounds how long Measure polls the BUSY flag after the
	// initial 85ms conversion delay. It is counted in poll delays, not wall
	// time. 0 polls until the sensor answers.
	BusyTimeout time.Duration
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{}

// Dev is a handle to a DHT20 sensor.
type Dev struct {
	d     *i2c.Dev
	delay Delayer
	opts  Opts

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewI2C returns an object that communicates over I²C to a DHT20. It does not
// talk to the sensor; call Init once after power-up. The Opts can be nil.
func NewI2C(b i2c.Bus, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: DefaultAddress}, delay: opts.Delay, opts: *opts}
	if d.delay == nil {
		d.delay = clock.New()
	}
	return d
}

// Init waits for the sensor to power up and reloads its calibration
// registers when the status byte says they are not loaded.
//
// The status is not read again after the reset.
func (d *Dev) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.delay.Sleep(powerOnDelay)
	status, err := d.status()
	if err != nil {
		return err
	}
	if status&maskCalibrated == maskCalibrated {
		return nil
	}
	for _, reg := range calibrationRegisters {
		if err := d.resetRegister(reg); err != nil {
			return err
		}
	}
	d.delay.Sleep(calibrationSettled)
	return nil
}

// Measure triggers a measurement, waits for it and returns the converted
// result. A CRC mismatch returns a *DataCorruptionError; the measurement is
// not retried.
func (d *Dev) Measure() (Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	frame, err := d.readFrame()
	if err != nil {
		return Reading{}, err
	}
	return Decode(frame)
}

// Sense implements physic.SenseEnv. It returns the current temperature and
// humidity; the pressure is left untouched. The measurement takes at least 85ms.
func (d *Dev) Sense(e *physic.Env) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	frame, err := d.readFrame()
	if err != nil {
		return err
	}
	if _, err := Decode(frame); err != nil {
		return err
	}
	humidityRH := float64(RawHumidity(frame)) / fullScale * 100.0
	temperatureC := float64(RawTemperature(frame))/fullScale*200 - 50.0

	e.Humidity = physic.RelativeHumidity(humidityRH * float64(physic.PercentRH))
	e.Temperature = physic.Temperature(temperatureC*float64(physic.Kelvin)) + physic.ZeroCelsius
	return nil
}

// SenseContinuous implements physic.SenseEnv. It returns a channel that will
// receive a measurement every interval. Failed measurements are skipped. It is
// the caller's responsibility to call Halt() when done.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < conversionDelay {
		return nil, errors.New("dht20: sample interval is shorter than a conversion")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil, errors.New("dht20: SenseContinuous already running")
	}

	stop := make(chan struct{})
	sensing := make(chan physic.Env)
	d.stop = stop
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(sensing)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var e physic.Env
				if err := d.Sense(&e); err != nil {
					continue
				}
				select {
				case sensing <- e:
				case <-stop:
					return
				}
			}
		}
	}()
	return sensing, nil
}

// Precision implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = 10 * physic.MilliKelvin
	e.Humidity = 24 * physic.MilliRH
	e.Pressure = 0
}

// Halt stops a measurement loop started by SenseContinuous().
func (d *Dev) Halt() error {
	d.mu.Lock()
	stop := d.stop
	d.stop = nil
	d.mu.Unlock()
	if stop != nil {
		close(stop)
		d.wg.Wait()
	}
	return nil
}

// Delay lends the delay capability to the caller between measurements.
func (d *Dev) Delay() Delayer {
	return d.delay
}

func (d *Dev) String() string {
	return "DHT20"
}

func (d *Dev) status() (byte, error) {
	s := [1]byte{}
	if err := d.d.Tx([]byte{cmdStatus}, s[:]); err != nil {
		return 0, &BusError{Op: "read status", Err: err}
	}
	return s[0], nil
}

// resetRegister runs the vendor "JH reset" on reg: zero it, read it back and
// write the two low bytes back behind the 0xB0|reg command.
func (d *Dev) resetRegister(reg byte) error {
	if err := d.d.Tx([]byte{reg, 0x00, 0x00}, nil); err != nil {
		return &BusError{Op: "clear calibration register", Err: err}
	}
	d.delay.Sleep(resetReadDelay)
	regs := [3]byte{}
	if err := d.d.Tx(nil, regs[:]); err != nil {
		return &BusError{Op: "read calibration register", Err: err}
	}
	d.delay.Sleep(resetWriteDelay)
	if err := d.d.Tx([]byte{cmdCalReset | reg, regs[1], regs[2]}, nil); err != nil {
		return &BusError{Op: "write calibration register", Err: err}
	}
	return nil
}

// readFrame triggers a measurement and returns the raw frame. The CRC is not
// checked.
func (d *Dev) readFrame() ([]byte, error) {
	if err := d.d.Tx(argsMeasure, nil); err != nil {
		return nil, &BusError{Op: "trigger measurement", Err: err}
	}
	d.delay.Sleep(conversionDelay)
	var waited time.Duration
	for {
		status, err := d.status()
		if err != nil {
			return nil, err
		}
		if status&bitBusy == 0 {
			break
		}
		if d.opts.BusyTimeout > 0 && waited >= d.opts.BusyTimeout {
			return nil, &ReadTimeoutError{}
		}
		d.delay.Sleep(busyPollInterval)
		waited += busyPollInterval
	}
	frame := make([]byte, frameSize)
	if err := d.d.Tx(nil, frame); err != nil {
		return nil, &BusError{Op: "read measurement", Err: err}
	}
	return frame, nil
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
