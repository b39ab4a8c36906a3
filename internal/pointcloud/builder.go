package pointcloud

import (
	"fmt"
)

// PointRecord is a transformed point ready for chunking.
type PointRecord struct {
	Position [3]float32
	Color    Color
}

// PointBuffer is the output of the build pass.
type PointBuffer struct {
	Points      []PointRecord
	Fingerprint uint64
}

// BuildPoints is the second pass. It allocates exactly expected slots and
// fills them in file order, failing with ErrConsistencyViolation as soon as
// the source yields more points than expected, or at the end if it yields
// fewer.
func BuildPoints(src LineSource, layout ColumnLayout, tr Transform, expected int, opts PassOptions) (*PointBuffer, error) {
	if expected < 0 {
		return nil, fmt.Errorf("%w: negative point count %d", ErrInvalidConfiguration, expected)
	}
	points := make([]PointRecord, 0, expected)
	tracker := newTracker(opts.Progress, PhaseBuild, opts.Interval, opts.TotalLines, 1.0/3, 1.0/3)

	_, digest, err := walkPoints(src, layout, tracker, nil, opts.OnLineError,
		func(line int, p RawPoint, c Color) error {
			if len(points) == expected {
				return fmt.Errorf("%w: line %d yields point %d, bounds pass counted %d",
					ErrConsistencyViolation, line, expected+1, expected)
			}
			points = append(points, PointRecord{Position: tr.Apply(p), Color: c})
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("build pass: %w", err)
	}
	if len(points) != expected {
		return nil, fmt.Errorf("build pass: %w: found %d points, bounds pass counted %d",
			ErrConsistencyViolation, len(points), expected)
	}
	return &PointBuffer{Points: points, Fingerprint: digest}, nil
}
