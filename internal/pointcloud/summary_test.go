package pointcloud

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", s)
	}

	one := Summarize([]PointRecord{{Position: [3]float32{1, 2, 3}}})
	if one.Count != 1 || one.Centroid != [3]float64{1, 2, 3} || one.StdDev != [3]float64{} {
		t.Errorf("single point summary = %+v", one)
	}

	s := Summarize([]PointRecord{
		{Position: [3]float32{0, 5, -1}},
		{Position: [3]float32{2, 5, 1}},
	})
	if s.Count != 2 {
		t.Errorf("Count = %d", s.Count)
	}
	if s.Centroid != [3]float64{1, 5, 0} {
		t.Errorf("Centroid = %v", s.Centroid)
	}
	want := [3]float64{math.Sqrt2, 0, math.Sqrt2}
	for a := 0; a < 3; a++ {
		if math.Abs(s.StdDev[a]-want[a]) > 1e-12 {
			t.Errorf("StdDev[%d] = %v, want %v", a, s.StdDev[a], want[a])
		}
	}
}
