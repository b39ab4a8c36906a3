package export

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/cloudload/internal/fsutil"
	"github.com/banshee-data/cloudload/internal/monitoring"
	"github.com/banshee-data/cloudload/internal/pointcloud"
)

// WriteElevationHistogram saves a PNG histogram of the transformed Y
// (up) coordinate of every point in cloud.
func WriteElevationHistogram(fsys fsutil.FileSystem, path string, cloud *pointcloud.PointCloud, bins int) error {
	if cloud == nil || cloud.PointCount() == 0 {
		return ErrNothingToExport
	}
	if bins < 1 {
		return fmt.Errorf("histogram: bins must be positive, got %d", bins)
	}
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}

	values := make(plotter.Values, 0, cloud.PointCount())
	for i := range cloud.Chunks {
		for _, p := range cloud.Chunks[i].Positions {
			values = append(values, float64(p[1]))
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s elevation (%d points)", cloud.Name, len(values))
	p.X.Label.Text = "Y"
	p.Y.Label.Text = "Points"

	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	p.Add(h)

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("histogram: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	monitoring.Logf("export: wrote elevation histogram (%d bins) to %s", bins, path)
	return nil
}
