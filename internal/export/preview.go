package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/cloudload/internal/pointcloud"
)

// echartsAssetsHost serves the echarts JavaScript for rendered pages.
const echartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// WritePreviewHTML renders a 3D scatter of cloud to w, keeping every
// stride-th point so that at most maxPoints are drawn.
func WritePreviewHTML(w io.Writer, cloud *pointcloud.PointCloud, maxPoints int) error {
	if cloud == nil || cloud.PointCount() == 0 {
		return ErrNothingToExport
	}
	if maxPoints < 1 {
		return fmt.Errorf("preview: max points must be positive, got %d", maxPoints)
	}

	total := cloud.PointCount()
	stride := (total + maxPoints - 1) / maxPoints
	data := make([]opts.Chart3DData, 0, total/stride+1)
	n := 0
	for i := range cloud.Chunks {
		c := &cloud.Chunks[i]
		for j, p := range c.Positions {
			if n%stride == 0 {
				data = append(data, opts.Chart3DData{
					Value:     []interface{}{p[0], p[1], p[2]},
					ItemStyle: &opts.ItemStyle{Color: hexColor(c.Colors[j])},
				})
			}
			n++
		}
	}

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Point cloud " + cloud.Name, Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: cloud.Name, Subtitle: fmt.Sprintf("points=%d shown=%d stride=%d chunks=%d", total, len(data), stride, len(cloud.Chunks))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z"}),
	)
	scatter.AddSeries(cloud.Name, data)

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("preview render: %w", err)
	}
	return nil
}

func hexColor(c [4]float32) string {
	return fmt.Sprintf("#%02x%02x%02x", channel255(c[0]), channel255(c[1]), channel255(c[2]))
}
