package pointcloud

import (
	"math"
	"strconv"
	"strings"
)

// RawPoint is a coordinate triple exactly as read from a line.
type RawPoint struct {
	X, Y, Z float64
}

// Color is an RGB triple, nominally in [0,1].
type Color [3]float32

// White is the color given to points when the layout has no color columns.
var White = Color{1, 1, 1}

// Tokenize splits a line into fields. The whitespace delimiter collapses
// runs of blanks; any other delimiter splits literally, so doubled
// delimiters produce empty fields.
func Tokenize(line string, delim rune) []string {
	if isWhitespaceDelimiter(delim) {
		return strings.Fields(line)
	}
	return strings.Split(line, string(delim))
}

func isWhitespaceDelimiter(r rune) bool {
	return r == 0 || r == WhitespaceDelimiter
}

// Extract converts a tokenized line into a point and its color.
//
// It returns ErrSkippedLine when the field count does not match the layout
// and ErrMalformedLine (wrapped in a *LineError with Line left at zero) when
// a referenced column is missing or not a finite number.
func (l ColumnLayout) Extract(fields []string) (RawPoint, Color, error) {
	if len(fields) != l.ElementsPerLine {
		return RawPoint{}, Color{}, ErrSkippedLine
	}

	var p RawPoint
	var err error
	if p.X, err = field(fields, l.X); err != nil {
		return RawPoint{}, Color{}, err
	}
	if p.Y, err = field(fields, l.Y); err != nil {
		return RawPoint{}, Color{}, err
	}
	if p.Z, err = field(fields, l.Z); err != nil {
		return RawPoint{}, Color{}, err
	}

	if !l.HasColor() {
		return p, White, nil
	}
	scale := l.Color.Scale()
	var c Color
	for i, idx := range [3]int{l.R, l.G, l.B} {
		v, err := field(fields, idx)
		if err != nil {
			return RawPoint{}, Color{}, err
		}
		c[i] = float32(v / scale)
	}
	return p, c, nil
}

// field parses the 1-based column idx.
func field(fields []string, idx int) (float64, error) {
	if idx < 1 || idx > len(fields) {
		return 0, &LineError{Field: "column " + strconv.Itoa(idx), Err: ErrMalformedLine}
	}
	s := fields[idx-1]
	v, ok := parseDecimal(s)
	if !ok {
		return 0, &LineError{Field: s, Err: ErrMalformedLine}
	}
	return v, nil
}

// parseDecimal accepts decimal float literals with an optional sign and
// exponent. Hex literals, NaN, infinities and values outside the float32
// range of stored points are rejected.
func parseDecimal(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.Abs(v) > math.MaxFloat32 {
		return 0, false
	}
	return v, true
}
