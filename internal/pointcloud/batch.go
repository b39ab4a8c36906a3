package pointcloud

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/cloudload/internal/monitoring"
)

// Batch collects the clouds loaded from one directory, in load order.
type Batch struct {
	Name     string
	Clouds   []*PointCloud
	Failures []BatchFailure
}

// BatchFailure records a file whose load was aborted.
type BatchFailure struct {
	Path string
	Err  error
}

// NewBatch returns an empty batch container.
func NewBatch(name string) *Batch {
	return &Batch{Name: name}
}

// Add appends a completed cloud.
func (b *Batch) Add(c *PointCloud) {
	b.Clouds = append(b.Clouds, c)
}

// PointCount is the total number of points in the batch.
func (b *Batch) PointCount() int {
	n := 0
	for _, c := range b.Clouds {
		n += c.PointCount()
	}
	return n
}

// LoadBatch loads every file in dir, one after another, in name order.
// Editor metadata files (*.meta) are skipped. A failed load is recorded in
// Failures and does not stop the batch.
func (l *Loader) LoadBatch(dir string) (*Batch, error) {
	names, err := l.fs.ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", dir, err)
	}

	batch := NewBatch(filepath.Base(filepath.Clean(dir)))
	for _, n := range names {
		path := filepath.Join(dir, n)
		if strings.Contains(n, ".meta") {
			monitoring.Logf("pointcloud: batch %s: skipping %s", batch.Name, path)
			continue
		}
		monitoring.Logf("pointcloud: batch %s: loading %s", batch.Name, path)
		cloud, err := l.LoadFile(path)
		if err != nil {
			monitoring.Logf("pointcloud: batch %s: %v", batch.Name, err)
			batch.Failures = append(batch.Failures, BatchFailure{Path: path, Err: err})
			continue
		}
		batch.Add(cloud)
	}
	return batch, nil
}
