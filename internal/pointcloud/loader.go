package pointcloud

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/banshee-data/cloudload/internal/fsutil"
	"github.com/banshee-data/cloudload/internal/monitoring"
	"github.com/banshee-data/cloudload/internal/timeutil"
)

// maxLoggedLineErrors caps per-load malformed line diagnostics.
const maxLoggedLineErrors = 5

// Options configures a Loader.
type Options struct {
	Layout       ColumnLayout
	CenterPoints bool
	// MaxChunkSize defaults to DefaultMaxChunkSize.
	MaxChunkSize int
	// ProgressInterval defaults to DefaultProgressInterval.
	ProgressInterval int
	Progress         ProgressFunc
	OnLineError      func(*LineError)
	// Clock times each load; defaults to the wall clock.
	Clock timeutil.Clock
}

// Stats records what the bounds pass saw.
type Stats struct {
	TotalLines   int
	ValidPoints  int
	SkippedLines int
	Malformed    *roaring.Bitmap
	Fingerprint  uint64
	Duration     time.Duration
}

// MalformedLines is the number of malformed data lines.
func (s Stats) MalformedLines() int {
	if s.Malformed == nil {
		return 0
	}
	return int(s.Malformed.GetCardinality())
}

// PointCloud groups every chunk built from one source.
type PointCloud struct {
	Name         string
	Source       string
	Layout       ColumnLayout
	Extent       Extent
	Transform    Transform
	MaxChunkSize int
	Chunks       []Chunk
	Stats        Stats
	Summary      Summary
}

// PointCount is the total number of points across all chunks.
func (c *PointCloud) PointCount() int {
	n := 0
	for i := range c.Chunks {
		n += c.Chunks[i].PointCount()
	}
	return n
}

// Loader runs load operations with a fixed configuration.
type Loader struct {
	fs   fsutil.FileSystem
	opts Options
}

// NewLoader validates opts and returns a Loader reading through fsys (the
// OS filesystem when nil).
func NewLoader(fsys fsutil.FileSystem, opts Options) (*Loader, error) {
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxChunkSize == 0 {
		opts.MaxChunkSize = DefaultMaxChunkSize
	}
	if opts.MaxChunkSize < 0 {
		return nil, fmt.Errorf("%w: max chunk size must be positive, got %d", ErrInvalidConfiguration, opts.MaxChunkSize)
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	return &Loader{fs: fsys, opts: opts}, nil
}

// Options returns the effective options.
func (l *Loader) Options() Options { return l.opts }

// CloudName derives a cloud name from a file path: the base name up to the
// first dot. Files without an extension are rejected. A dot file such as
// ".scan.pts" yields an empty name.
func CloudName(path string) (string, error) {
	base := filepath.Base(path)
	name, _, ok := strings.Cut(base, ".")
	if path == "" || base == "." || base == ".." || !ok {
		return "", fmt.Errorf("%w: %s: file must have an extension (.pts, .xyz, ...)", ErrInvalidConfiguration, path)
	}
	return name, nil
}

// LoadFile loads the file at path.
func (l *Loader) LoadFile(path string) (*PointCloud, error) {
	name, err := CloudName(path)
	if err != nil {
		return nil, err
	}
	if !l.fs.Exists(path) {
		return nil, fmt.Errorf("load %s: file not found", path)
	}
	return l.LoadSource(name, NewFileSource(l.fs, path))
}

// LoadSource runs one load: bounds pass, transform, build pass and
// partition. On error no cloud is returned.
func (l *Loader) LoadSource(name string, src LineSource) (*PointCloud, error) {
	start := l.opts.Clock.Now()

	total, err := CountLines(src)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	logged := 0
	pass := PassOptions{
		TotalLines: total,
		Progress:   l.opts.Progress,
		Interval:   l.opts.ProgressInterval,
		OnLineError: func(le *LineError) {
			if l.opts.OnLineError != nil {
				l.opts.OnLineError(le)
			}
			if logged < maxLoggedLineErrors {
				monitoring.Logf("pointcloud: %s: skipping %v", name, le)
			} else if logged == maxLoggedLineErrors {
				monitoring.Logf("pointcloud: %s: further malformed lines not logged", name)
			}
			logged++
		},
	}

	bounds, err := ScanBounds(src, l.opts.Layout, pass)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	tr := NewTransform(bounds.Extent, l.opts.CenterPoints)

	// Only the bounds pass reports line errors; the build pass would repeat them.
	pass.OnLineError = nil
	buf, err := BuildPoints(src, l.opts.Layout, tr, bounds.ValidPoints, pass)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if buf.Fingerprint != bounds.Fingerprint {
		return nil, fmt.Errorf("load %s: %w: content fingerprint %016x != %016x",
			name, ErrConsistencyViolation, buf.Fingerprint, bounds.Fingerprint)
	}

	summary := Summarize(buf.Points)
	chunks, err := partition(buf.Points, l.opts.MaxChunkSize, name, l.opts.Progress)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if l.opts.Progress != nil {
		l.opts.Progress(PhaseChunk, 1)
	}

	cloud := &PointCloud{
		Name:         name,
		Source:       src.Name(),
		Layout:       l.opts.Layout,
		Extent:       bounds.Extent,
		Transform:    tr,
		MaxChunkSize: l.opts.MaxChunkSize,
		Chunks:       chunks,
		Summary:      summary,
		Stats: Stats{
			TotalLines:   bounds.TotalLines,
			ValidPoints:  bounds.ValidPoints,
			SkippedLines: bounds.SkippedLines,
			Malformed:    bounds.Malformed,
			Fingerprint:  bounds.Fingerprint,
			Duration:     l.opts.Clock.Since(start),
		},
	}
	monitoring.Logf("pointcloud: %s: %d points in %d chunks from %d lines (%d skipped, %d malformed) extent=%s in %v",
		name, bounds.ValidPoints, len(chunks), bounds.TotalLines, bounds.SkippedLines,
		cloud.Stats.MalformedLines(), bounds.Extent, cloud.Stats.Duration)
	return cloud, nil
}
