// Package catalog records load runs and their chunks in the SQLite
// catalog so past loads can be listed and compared.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/cloudload/internal/pointcloud"
	"github.com/banshee-data/cloudload/internal/timeutil"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// Run is one load attempt.
type Run struct {
	RunID          string
	CloudName      string
	Source         string
	BatchName      string
	Status         string
	Error          string
	Layout         string
	TotalLines     int
	ValidPoints    int
	SkippedLines   int
	MalformedLines int
	ChunkCount     int
	MaxChunkSize   int
	// Min and Max are nil when no point was loaded.
	Min, Max    *[3]float64
	Centroid    [3]float64
	StdDev      [3]float64
	Fingerprint uint64
	Duration    time.Duration
	CreatedAt   int64 // unix nanos
}

// ChunkRecord describes one chunk of a run.
type ChunkRecord struct {
	RunID      string
	Index      int
	Name       string
	Offset     int
	PointCount int
}

// Store persists runs.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewStore creates a Store on an open, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, clock: timeutil.RealClock{}}
}

// SetClock replaces the clock that stamps new runs.
func (s *Store) SetClock(c timeutil.Clock) {
	s.clock = c
}

// RunFromCloud builds the run and chunk rows for a completed load.
func RunFromCloud(cloud *pointcloud.PointCloud, batchName string) (*Run, []ChunkRecord) {
	run := &Run{
		CloudName:      cloud.Name,
		Source:         cloud.Source,
		BatchName:      batchName,
		Status:         StatusOK,
		Layout:         cloud.Layout.String(),
		TotalLines:     cloud.Stats.TotalLines,
		ValidPoints:    cloud.Stats.ValidPoints,
		SkippedLines:   cloud.Stats.SkippedLines,
		MalformedLines: cloud.Stats.MalformedLines(),
		ChunkCount:     len(cloud.Chunks),
		MaxChunkSize:   cloud.MaxChunkSize,
		Centroid:       cloud.Summary.Centroid,
		StdDev:         cloud.Summary.StdDev,
		Fingerprint:    cloud.Stats.Fingerprint,
		Duration:       cloud.Stats.Duration,
	}
	if !cloud.Extent.IsEmpty() {
		lo, hi := cloud.Extent.Min, cloud.Extent.Max
		run.Min, run.Max = &lo, &hi
	}
	chunks := make([]ChunkRecord, len(cloud.Chunks))
	for i, c := range cloud.Chunks {
		chunks[i] = ChunkRecord{Index: c.Index, Name: c.Name, Offset: c.Offset, PointCount: c.PointCount()}
	}
	return run, chunks
}

// FailedRun builds the row for an aborted load.
func FailedRun(path, batchName string, opts pointcloud.Options, loadErr error) *Run {
	name, err := pointcloud.CloudName(path)
	if err != nil {
		name = path
	}
	run := &Run{
		CloudName:    name,
		Source:       path,
		BatchName:    batchName,
		Status:       StatusFailed,
		Layout:       opts.Layout.String(),
		MaxChunkSize: opts.MaxChunkSize,
	}
	if loadErr != nil {
		run.Error = loadErr.Error()
	}
	return run
}

// RecordRun inserts run and its chunks in one transaction. An empty RunID
// is filled with a new UUID and a zero CreatedAt with the current time.
func (s *Store) RecordRun(run *Run, chunks []ChunkRecord) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}
	if run.Status == "" {
		run.Status = StatusOK
	}

	var minV, maxV [3]sql.NullFloat64
	if run.Min != nil && run.Max != nil {
		for a := 0; a < 3; a++ {
			minV[a] = sql.NullFloat64{Float64: run.Min[a], Valid: true}
			maxV[a] = sql.NullFloat64{Float64: run.Max[a], Valid: true}
		}
	}
	var batch, errText sql.NullString
	if run.BatchName != "" {
		batch = sql.NullString{String: run.BatchName, Valid: true}
	}
	if run.Error != "" {
		errText = sql.NullString{String: run.Error, Valid: true}
	}

	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.Exec(`
			INSERT INTO load_runs (
				run_id, cloud_name, source, batch_name, status, error, layout,
				total_lines, valid_points, skipped_lines, malformed_lines,
				chunk_count, max_chunk_size,
				min_x, min_y, min_z, max_x, max_y, max_z,
				centroid_x, centroid_y, centroid_z, stddev_x, stddev_y, stddev_z,
				fingerprint, duration_ms, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.CloudName, run.Source, batch, run.Status, errText, run.Layout,
			run.TotalLines, run.ValidPoints, run.SkippedLines, run.MalformedLines,
			run.ChunkCount, run.MaxChunkSize,
			minV[0], minV[1], minV[2], maxV[0], maxV[1], maxV[2],
			run.Centroid[0], run.Centroid[1], run.Centroid[2], run.StdDev[0], run.StdDev[1], run.StdDev[2],
			strconv.FormatUint(run.Fingerprint, 16), run.Duration.Milliseconds(), run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, c := range chunks {
			if _, err := tx.Exec(`
				INSERT INTO load_chunks (run_id, chunk_index, name, point_offset, point_count)
				VALUES (?, ?, ?, ?, ?)`,
				run.RunID, c.Index, c.Name, c.Offset, c.PointCount,
			); err != nil {
				return fmt.Errorf("insert chunk %d: %w", c.Index, err)
			}
		}
		return tx.Commit()
	})
}

const runColumns = `
	run_id, cloud_name, source, batch_name, status, error, layout,
	total_lines, valid_points, skipped_lines, malformed_lines,
	chunk_count, max_chunk_size,
	min_x, min_y, min_z, max_x, max_y, max_z,
	centroid_x, centroid_y, centroid_z, stddev_x, stddev_y, stddev_z,
	fingerprint, duration_ms, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var batch, errText, fingerprint sql.NullString
	var minV, maxV [3]sql.NullFloat64
	var centroid, stddev [3]sql.NullFloat64
	var durationMS int64
	err := row.Scan(
		&r.RunID, &r.CloudName, &r.Source, &batch, &r.Status, &errText, &r.Layout,
		&r.TotalLines, &r.ValidPoints, &r.SkippedLines, &r.MalformedLines,
		&r.ChunkCount, &r.MaxChunkSize,
		&minV[0], &minV[1], &minV[2], &maxV[0], &maxV[1], &maxV[2],
		&centroid[0], &centroid[1], &centroid[2], &stddev[0], &stddev[1], &stddev[2],
		&fingerprint, &durationMS, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.BatchName = batch.String
	r.Error = errText.String
	r.Duration = time.Duration(durationMS) * time.Millisecond
	if minV[0].Valid {
		r.Min = &[3]float64{minV[0].Float64, minV[1].Float64, minV[2].Float64}
		r.Max = &[3]float64{maxV[0].Float64, maxV[1].Float64, maxV[2].Float64}
	}
	for a := 0; a < 3; a++ {
		r.Centroid[a] = centroid[a].Float64
		r.StdDev[a] = stddev[a].Float64
	}
	if fingerprint.Valid {
		if v, err := strconv.ParseUint(fingerprint.String, 16, 64); err == nil {
			r.Fingerprint = v
		}
	}
	return &r, nil
}

// GetRun returns a run by id.
func (s *Store) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM load_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM load_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListChunks returns the chunks of a run in index order.
func (s *Store) ListChunks(runID string) ([]ChunkRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, chunk_index, name, point_offset, point_count
		FROM load_chunks
		WHERE run_id = ?
		ORDER BY chunk_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []ChunkRecord
	for rows.Next() {
		var c ChunkRecord
		if err := rows.Scan(&c.RunID, &c.Index, &c.Name, &c.Offset, &c.PointCount); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
