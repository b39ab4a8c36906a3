package pointcloud

import (
	"fmt"
	"strconv"
)

// DefaultMaxChunkSize is the per-mesh vertex ceiling of the target renderer.
const DefaultMaxChunkSize = 65000

// Chunk is a self-contained slice of the point buffer that fits in one
// renderable primitive.
type Chunk struct {
	Index int
	Name  string
	// Offset is the position of the chunk's first point in the full buffer.
	Offset    int
	Positions [][3]float32
	Colors    [][4]float32
	// Indices is 0..n-1: discrete points, no connectivity.
	Indices []uint32
}

// PointCount is the number of points in the chunk.
func (c *Chunk) PointCount() int { return len(c.Positions) }

// ChunkCount returns ceil(total/maxChunkSize); zero points yield zero chunks.
func ChunkCount(total, maxChunkSize int) int {
	if total <= 0 || maxChunkSize <= 0 {
		return 0
	}
	return (total + maxChunkSize - 1) / maxChunkSize
}

// Partition copies points into consecutive chunks of maxChunkSize points;
// only the last chunk may be smaller. label prefixes chunk names.
func Partition(points []PointRecord, maxChunkSize int, label string) ([]Chunk, error) {
	return partition(points, maxChunkSize, label, nil)
}

func partition(points []PointRecord, maxChunkSize int, label string, progress ProgressFunc) ([]Chunk, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: max chunk size must be positive, got %d", ErrInvalidConfiguration, maxChunkSize)
	}
	n := ChunkCount(len(points), maxChunkSize)
	if n == 0 {
		return nil, nil
	}

	chunks := make([]Chunk, n)
	for i := 0; i < n; i++ {
		size := maxChunkSize
		if i == n-1 {
			size = len(points) - (n-1)*maxChunkSize
		}
		chunks[i] = newChunk(i, label, points[i*maxChunkSize:i*maxChunkSize+size], i*maxChunkSize)

		if progress != nil && i%2 == 0 {
			progress(PhaseChunk, 2.0/3+fraction(i, n)/3)
		}
	}
	return chunks, nil
}

func newChunk(index int, label string, src []PointRecord, offset int) Chunk {
	c := Chunk{
		Index:     index,
		Name:      label + strconv.Itoa(index),
		Offset:    offset,
		Positions: make([][3]float32, len(src)),
		Colors:    make([][4]float32, len(src)),
		Indices:   make([]uint32, len(src)),
	}
	for i, p := range src {
		c.Positions[i] = p.Position
		c.Colors[i] = [4]float32{p.Color[0], p.Color[1], p.Color[2], 1}
		c.Indices[i] = uint32(i)
	}
	return c
}
