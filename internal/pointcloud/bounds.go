package pointcloud

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Extent is the axis-aligned bounding box of the points observed so far.
// The zero value is empty.
type Extent struct {
	Min, Max [3]float64
	seen     bool
}

// NewExtent returns an extent that has already observed min and max.
func NewExtent(min, max [3]float64) Extent {
	return Extent{Min: min, Max: max, seen: true}
}

// IsEmpty reports whether no point has been observed.
func (e Extent) IsEmpty() bool { return !e.seen }

// Observe grows the extent to include p.
func (e *Extent) Observe(p RawPoint) {
	v := [3]float64{p.X, p.Y, p.Z}
	if !e.seen {
		e.Min = [3]float64{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64}
		e.Max = [3]float64{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64}
		e.seen = true
	}
	for axis := 0; axis < 3; axis++ {
		if v[axis] < e.Min[axis] {
			e.Min[axis] = v[axis]
		}
		if v[axis] > e.Max[axis] {
			e.Max[axis] = v[axis]
		}
	}
}

// Center is the midpoint of the extent, or the origin when empty.
func (e Extent) Center() [3]float64 {
	if e.IsEmpty() {
		return [3]float64{}
	}
	return [3]float64{
		(e.Min[0] + e.Max[0]) / 2,
		(e.Min[1] + e.Max[1]) / 2,
		(e.Min[2] + e.Max[2]) / 2,
	}
}

func (e Extent) String() string {
	if e.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("[%g %g %g]..[%g %g %g]", e.Min[0], e.Min[1], e.Min[2], e.Max[0], e.Max[1], e.Max[2])
}

// PassOptions configures a single streaming pass.
type PassOptions struct {
	// TotalLines is the line count used for progress fractions.
	TotalLines int
	Progress   ProgressFunc
	// Interval is the number of lines between progress reports.
	Interval int
	// OnLineError is called for every malformed line.
	OnLineError func(*LineError)
}

// BoundsResult is the outcome of the bounds pass.
type BoundsResult struct {
	Extent       Extent
	ValidPoints  int
	TotalLines   int
	SkippedLines int
	// Malformed holds 1-based line numbers of malformed data lines.
	Malformed   *roaring.Bitmap
	Fingerprint uint64
}

// walkPoints runs the shared extraction over every line of src. fn is
// called for each valid point; skipped lines are counted; malformed lines
// are reported to onMalformed. Both passes go through here so they agree
// on what a point is.
func walkPoints(src LineSource, layout ColumnLayout, progress *progressTracker,
	onSkipped func(line int), onMalformed func(*LineError),
	fn func(line int, p RawPoint, c Color) error,
) (int, uint64, error) {
	lines := 0
	digest, err := walkLines(src, func(i int, text string) error {
		lines++
		progress.observe(i)
		p, c, err := layout.Extract(Tokenize(text, layout.Delimiter))
		switch {
		case err == nil:
			return fn(i+1, p, c)
		case errors.Is(err, ErrSkippedLine):
			if onSkipped != nil {
				onSkipped(i + 1)
			}
			return nil
		default:
			le := &LineError{Err: ErrMalformedLine}
			errors.As(err, &le)
			le.Line = i + 1
			if onMalformed != nil {
				onMalformed(le)
			}
			return nil
		}
	})
	return lines, digest, err
}

// ScanBounds is the first pass: it counts valid points and computes their
// extent without retaining them.
func ScanBounds(src LineSource, layout ColumnLayout, opts PassOptions) (BoundsResult, error) {
	res := BoundsResult{Malformed: roaring.New()}
	tracker := newTracker(opts.Progress, PhaseBounds, opts.Interval, opts.TotalLines, 0, 1.0/3)

	lines, digest, err := walkPoints(src, layout, tracker,
		func(int) { res.SkippedLines++ },
		func(le *LineError) {
			res.Malformed.Add(uint32(le.Line))
			if opts.OnLineError != nil {
				opts.OnLineError(le)
			}
		},
		func(_ int, p RawPoint, _ Color) error {
			res.Extent.Observe(p)
			res.ValidPoints++
			return nil
		})
	if err != nil {
		return BoundsResult{}, fmt.Errorf("bounds pass: %w", err)
	}
	res.TotalLines = lines
	res.Fingerprint = digest
	return res, nil
}
