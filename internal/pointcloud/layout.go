package pointcloud

import (
	"fmt"
	"strings"
)

// ColorMode selects how color channels are read from a data line.
type ColorMode int

const (
	// ColorNone ignores color columns; every point is white.
	ColorNone ColorMode = iota
	// ColorNormalized reads channels already in [0,1].
	ColorNormalized
	// ColorRaw255 reads channels in [0,255].
	ColorRaw255
)

// Scale is the divisor that maps a raw channel value into [0,1].
func (m ColorMode) Scale() float64 {
	switch m {
	case ColorRaw255:
		return 255.0
	default:
		return 1.0
	}
}

func (m ColorMode) String() string {
	switch m {
	case ColorNone:
		return "none"
	case ColorNormalized:
		return "normalized"
	case ColorRaw255:
		return "rgb"
	default:
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
}

// ParseColorMode accepts the names produced by ColorMode.String.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ColorNone, nil
	case "normalized", "normalised":
		return ColorNormalized, nil
	case "rgb", "255", "raw255":
		return ColorRaw255, nil
	}
	return ColorNone, fmt.Errorf("%w: unknown color range %q", ErrInvalidConfiguration, s)
}

// Format names a well-known column arrangement.
type Format int

const (
	FormatCustom Format = iota
	FormatPTS
	FormatXYZ
	FormatXYZRGB
)

func (f Format) String() string {
	switch f {
	case FormatCustom:
		return "custom"
	case FormatPTS:
		return "pts"
	case FormatXYZ:
		return "xyz"
	case FormatXYZRGB:
		return "xyzrgb"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat accepts the names produced by Format.String.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "custom":
		return FormatCustom, nil
	case "pts":
		return FormatPTS, nil
	case "xyz":
		return FormatXYZ, nil
	case "xyzrgb":
		return FormatXYZRGB, nil
	}
	return FormatCustom, fmt.Errorf("%w: unknown format %q", ErrInvalidConfiguration, s)
}

// WhitespaceDelimiter selects the forgiving whitespace split. The zero
// delimiter means the same thing.
const WhitespaceDelimiter = ' '

// ColumnLayout maps semantic fields to 1-based columns of a data line.
// It is a value: build it once per load and pass it to every pass.
type ColumnLayout struct {
	ElementsPerLine int
	Delimiter       rune
	X, Y, Z         int
	Color           ColorMode
	R, G, B         int
}

// PresetLayout returns the layout for a well-known format. FormatCustom
// has no preset.
func PresetLayout(f Format) (ColumnLayout, error) {
	switch f {
	case FormatPTS:
		// x y z intensity r g b
		return ColumnLayout{ElementsPerLine: 7, X: 1, Y: 2, Z: 3, Color: ColorRaw255, R: 5, G: 6, B: 7}, nil
	case FormatXYZ:
		return ColumnLayout{ElementsPerLine: 3, X: 1, Y: 2, Z: 3}, nil
	case FormatXYZRGB:
		return ColumnLayout{ElementsPerLine: 7, X: 1, Y: 2, Z: 3, Color: ColorNormalized, R: 4, G: 5, B: 6}, nil
	}
	return ColumnLayout{}, fmt.Errorf("%w: no preset for format %s", ErrInvalidConfiguration, f)
}

// HasColor reports whether color columns are read.
func (l ColumnLayout) HasColor() bool {
	return l.Color != ColorNone
}

// Validate checks that every referenced column lies in [1, ElementsPerLine].
// Extraction stays bounds-checked regardless, so a layout that skips this
// check degrades to malformed lines rather than a crash.
func (l ColumnLayout) Validate() error {
	if l.ElementsPerLine < 1 {
		return fmt.Errorf("%w: elements per line must be positive, got %d", ErrInvalidConfiguration, l.ElementsPerLine)
	}
	switch l.Color {
	case ColorNone, ColorNormalized, ColorRaw255:
	default:
		return fmt.Errorf("%w: unknown color mode %d", ErrInvalidConfiguration, int(l.Color))
	}
	check := func(name string, idx int) error {
		if idx < 1 || idx > l.ElementsPerLine {
			return fmt.Errorf("%w: %s index %d outside [1, %d]", ErrInvalidConfiguration, name, idx, l.ElementsPerLine)
		}
		return nil
	}
	for _, c := range []struct {
		name string
		idx  int
	}{{"x", l.X}, {"y", l.Y}, {"z", l.Z}} {
		if err := check(c.name, c.idx); err != nil {
			return err
		}
	}
	if !l.HasColor() {
		return nil
	}
	for _, c := range []struct {
		name string
		idx  int
	}{{"r", l.R}, {"g", l.G}, {"b", l.B}} {
		if err := check(c.name, c.idx); err != nil {
			return err
		}
	}
	return nil
}

func (l ColumnLayout) String() string {
	delim := "whitespace"
	if !isWhitespaceDelimiter(l.Delimiter) {
		delim = fmt.Sprintf("%q", l.Delimiter)
	}
	s := fmt.Sprintf("fields=%d delim=%s xyz=%d,%d,%d color=%s", l.ElementsPerLine, delim, l.X, l.Y, l.Z, l.Color)
	if l.HasColor() {
		s += fmt.Sprintf(" rgb=%d,%d,%d", l.R, l.G, l.B)
	}
	return s
}
