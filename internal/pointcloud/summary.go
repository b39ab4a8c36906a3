package pointcloud

import (
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of the transformed positions.
type Summary struct {
	Count    int
	Centroid [3]float64
	StdDev   [3]float64
}

// Summarize computes per-axis mean and sample standard deviation. An empty input
// gives a zero Summary.
func Summarize(points []PointRecord) Summary {
	s := Summary{Count: len(points)}
	if len(points) == 0 {
		return s
	}
	axis := make([]float64, len(points))
	for a := 0; a < 3; a++ {
		for i, p := range points {
			axis[i] = float64(p.Position[a])
		}
		mean, std := stat.MeanStdDev(axis, nil)
		if len(points) == 1 {
			std = 0
		}
		s.Centroid[a] = mean
		s.StdDev[a] = std
	}
	return s
}
