// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen1d implements a 1D display.Drawer that outputs to a terminal
// using ANSI color codes, and uses it as a humidity/temperature gauge.
//
// The bar length follows the relative humidity; its color goes from blue to
// red with the temperature. The numeric reading is printed after the bar.
package screen1d

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/GermanBionicSystems/climate/dht20"
	"github.com/fogleman/gg"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"periph.io/x/conn/v3/display"
)

// Temperatures mapped to the ends of the color ramp, in °C.
const (
	coldest = -10.0
	hottest = 40.0
)

var background = color.NRGBA{0x30, 0x30, 0x30, 0xff}

// Opts represents the options available for this display.
type Opts struct {
	// X is the gauge width in character cells. Defaults to 40.
	X       int
	Palette *ansi256.Palette

	_ struct{}
}

// Dev is a terminal gauge.
type Dev struct {
	w       io.Writer
	l       int
	palette ansi256.Palette

	pixels []byte
	text   string
	buf    bytes.Buffer
}

// New returns a Dev that writes to w. A nil w writes to stdout, translating
// the escape codes on Windows consoles.
func New(w io.Writer, opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	l := opts.X
	if l <= 0 {
		l = 40
	}
	return &Dev{
		w:       w,
		l:       l,
		palette: *p,
		pixels:  make([]byte, 3*l),
	}
}

// IsTerminal reports whether f is attached to a terminal that can show the
// gauge.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (d *Dev) String() string {
	return "Screen1D"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors and ends the line.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Show renders r as the gauge.
func (d *Dev) Show(r dht20.Reading) error {
	dc := gg.NewContext(d.l, 1)
	dc.SetColor(background)
	dc.Clear()
	filled := math.Round(clamp(float64(r.Humidity), 0, 100) / 100 * float64(d.l))
	if filled > 0 {
		dc.SetColor(temperatureColor(r.Temperature))
		dc.DrawRectangle(0, 0, filled, 1)
		dc.Fill()
	}
	d.text = fmt.Sprintf("%5.1f%%RH %6.2f°C", r.Humidity, r.Temperature)
	return d.Draw(d.Bounds(), dc.Image(), image.Point{})
}

// Write accepts a stream of raw RGB pixels and writes it to the console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("screen1d: invalid RGB stream length")
	}
	copy(d.pixels, pixels)
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: d.l, Y: 1}}
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	if dY := r.Dy(); dY < srcR.Dy() {
		srcR.Max.Y = srcR.Min.Y + dY
	}
	deltaX3 := 3 * (r.Min.X - srcR.Min.X)
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		c := color.NRGBAModel.Convert(src.At(sX, srcR.Min.Y)).(color.NRGBA)
		dX3 := 3*sX + deltaX3
		d.pixels[dX3] = c.R
		d.pixels[dX3+1] = c.G
		d.pixels[dX3+2] = c.B
	}
	_, err := d.refresh()
	return err
}

func (d *Dev) refresh() (int, error) {
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < len(d.pixels)/3; i++ {
		c := color.NRGBA{d.pixels[3*i], d.pixels[3*i+1], d.pixels[3*i+2], 255}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, _ = d.buf.WriteString(d.text)
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

// temperatureColor blends from blue at coldest to red at hottest.
func temperatureColor(c float32) color.NRGBA {
	f := (clamp(float64(c), coldest, hottest) - coldest) / (hottest - coldest)
	return color.NRGBA{R: uint8(math.Round(255 * f)), B: uint8(math.Round(255 * (1 - f))), A: 0xff}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
