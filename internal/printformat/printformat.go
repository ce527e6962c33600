// Package printformat defines the print formats and decides which of them an
// image qualifies for.
package printformat

import (
	"fmt"
	"math"
	"strings"
)

// Format is a named print target. Width and Height are the portrait pixel
// dimensions; they are both the minimum source resolution and the exact
// output size.
type Format struct {
	Name   string `yaml:"name" json:"name"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
}

// Built-in formats.
var (
	Print8x10  = Format{Name: "8x10", Width: 2400, Height: 3000}
	Print11x17 = Format{Name: "11x17", Width: 3300, Height: 5100}
	Print16x20 = Format{Name: "16x20", Width: 4800, Height: 6000}
)

// Defaults returns the built-in formats in output order.
func Defaults() []Format {
	return []Format{Print8x10, Print11x17}
}

// Ratio is the canonical short/long ratio of the format.
func (f Format) Ratio() float64 {
	short, long := orient(f.Width, f.Height)
	return float64(short) / float64(long)
}

// Dimensions returns the output size for a source of the given orientation.
// Landscape sources get the format rotated; square sources print portrait.
func (f Format) Dimensions(o Orientation) (width, height int) {
	short, long := orient(f.Width, f.Height)
	if o == Landscape {
		return long, short
	}
	return short, long
}

// Fits reports whether a w×h source meets the minimum resolution in either
// orientation.
func (f Format) Fits(w, h int) bool {
	fs, fl := orient(f.Width, f.Height)
	s, l := orient(w, h)
	return s >= fs && l >= fl
}

func (f Format) String() string {
	return fmt.Sprintf("%s (%dx%d)", f.Name, f.Width, f.Height)
}

// Validate checks the format is usable.
func (f Format) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("format: empty name")
	}
	// The name becomes a directory under the output tree.
	if strings.ContainsAny(f.Name, `/\`) || strings.Contains(f.Name, "..") || f.Name == "." {
		return fmt.Errorf("format %q: name must be a single path element", f.Name)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("format %s: invalid dimensions %dx%d", f.Name, f.Width, f.Height)
	}
	return nil
}

// Orientation of an image.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
	Square    Orientation = "square"
)

// OrientationOf classifies w×h.
func OrientationOf(w, h int) Orientation {
	switch {
	case w > h:
		return Landscape
	case h > w:
		return Portrait
	default:
		return Square
	}
}

func orient(w, h int) (short, long int) {
	if w > h {
		return h, w
	}
	return w, h
}

// ratio returns short/long for w×h, or 0 for degenerate input.
func ratio(w, h int) float64 {
	s, l := orient(w, h)
	if l <= 0 {
		return 0
	}
	return float64(s) / float64(l)
}

func distance(r float64, f Format) float64 {
	return math.Abs(r - f.Ratio())
}
