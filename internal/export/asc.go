package export

import (
	"bufio"
	"fmt"
	"math"

	"github.com/banshee-data/cloudload/internal/fsutil"
	"github.com/banshee-data/cloudload/internal/monitoring"
	"github.com/banshee-data/cloudload/internal/pointcloud"
	"github.com/banshee-data/cloudload/internal/security"
)

// WriteASC exports the transformed points of cloud, in chunk order, to a
// CloudCompare-compatible .asc file in dir and returns its path. The file
// name is derived from the cloud name and confined to dir.
func WriteASC(fsys fsutil.FileSystem, dir string, cloud *pointcloud.PointCloud) (string, error) {
	if cloud == nil || cloud.PointCount() == 0 {
		return "", ErrNothingToExport
	}
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	safePath, err := security.OutputPath(dir, cloud.Name, ".asc")
	if err != nil {
		return "", err
	}

	f, err := fsys.Create(safePath)
	if err != nil {
		return "", err
	}
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "# Exported points\n")
	fmt.Fprintf(w, "# Source: %s\n", cloud.Source)
	fmt.Fprintf(w, "# Translation: %g %g %g (z negated)\n",
		cloud.Transform.Translation[0], cloud.Transform.Translation[1], cloud.Transform.Translation[2])
	fmt.Fprintf(w, "# Format: X Y Z R G B\n")
	for i := range cloud.Chunks {
		c := &cloud.Chunks[i]
		for j, p := range c.Positions {
			col := c.Colors[j]
			fmt.Fprintf(w, "%.6f %.6f %.6f %d %d %d\n", p[0], p[1], p[2],
				channel255(col[0]), channel255(col[1]), channel255(col[2]))
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	monitoring.Logf("export: wrote %d points to %s", cloud.PointCount(), safePath)
	return safePath, nil
}

// channel255 maps a [0,1] channel onto the 0..255 range ASC readers expect.
// Out-of-range values are clamped here, only for output.
func channel255(v float32) int {
	n := int(math.Round(float64(v) * 255))
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}
