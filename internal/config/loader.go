package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/banshee-data/cloudload/internal/pointcloud"
)

// DefaultConfigPath is the path to the canonical loader defaults file.
const DefaultConfigPath = "config/loader.defaults.json"

// LoaderConfig is the on-disk form of a load configuration. Every field is
// optional; the Get* methods supply defaults for anything left out, so
// partial configs are safe.
type LoaderConfig struct {
	// Layout. A preset format ignores the index fields below.
	Format          *string `json:"format,omitempty"` // pts, xyz, xyzrgb or custom
	ElementsPerLine *int    `json:"elements_per_line,omitempty"`
	Delimiter       *string `json:"delimiter,omitempty"` // a single character; " " splits on whitespace
	XIndex          *int    `json:"x_index,omitempty"`
	YIndex          *int    `json:"y_index,omitempty"`
	ZIndex          *int    `json:"z_index,omitempty"`
	ColorRange      *string `json:"color_range,omitempty"` // none, normalized or rgb
	RIndex          *int    `json:"r_index,omitempty"`
	GIndex          *int    `json:"g_index,omitempty"`
	BIndex          *int    `json:"b_index,omitempty"`

	// Load
	CenterPoints     *bool `json:"center_points,omitempty"`
	MaxChunkSize     *int  `json:"max_chunk_size,omitempty"`
	ProgressInterval *int  `json:"progress_interval,omitempty"`

	// Export
	PreviewMaxPoints *int `json:"preview_max_points,omitempty"`
	HistogramBins    *int `json:"histogram_bins,omitempty"`
}

func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyLoaderConfig returns a LoaderConfig with all fields unset.
func EmptyLoaderConfig() *LoaderConfig {
	return &LoaderConfig{}
}

// LoadLoaderConfig loads a LoaderConfig from a JSON file. The file must
// have a .json extension and be at most 1MB.
func LoadLoaderConfig(path string) (*LoaderConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyLoaderConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the current directory
// or one of its parents. Panics if the file cannot be loaded; intended for
// test setup.
func MustLoadDefaultConfig() *LoaderConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadLoaderConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks field values and that the resulting layout is usable.
func (c *LoaderConfig) Validate() error {
	if c.Delimiter != nil && utf8.RuneCountInString(*c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", *c.Delimiter)
	}
	if c.MaxChunkSize != nil && *c.MaxChunkSize < 1 {
		return fmt.Errorf("max_chunk_size must be positive, got %d", *c.MaxChunkSize)
	}
	if c.ProgressInterval != nil && *c.ProgressInterval < 1 {
		return fmt.Errorf("progress_interval must be positive, got %d", *c.ProgressInterval)
	}
	if c.PreviewMaxPoints != nil && *c.PreviewMaxPoints < 1 {
		return fmt.Errorf("preview_max_points must be positive, got %d", *c.PreviewMaxPoints)
	}
	if c.HistogramBins != nil && *c.HistogramBins < 1 {
		return fmt.Errorf("histogram_bins must be positive, got %d", *c.HistogramBins)
	}
	if _, err := c.Layout(); err != nil {
		return err
	}
	return nil
}

// Layout resolves the column layout described by the config.
func (c *LoaderConfig) Layout() (pointcloud.ColumnLayout, error) {
	format, err := pointcloud.ParseFormat(c.GetFormat())
	if err != nil {
		return pointcloud.ColumnLayout{}, err
	}

	var layout pointcloud.ColumnLayout
	if format != pointcloud.FormatCustom {
		layout, err = pointcloud.PresetLayout(format)
		if err != nil {
			return pointcloud.ColumnLayout{}, err
		}
	} else {
		color, err := pointcloud.ParseColorMode(c.GetColorRange())
		if err != nil {
			return pointcloud.ColumnLayout{}, err
		}
		layout = pointcloud.ColumnLayout{
			ElementsPerLine: c.GetElementsPerLine(),
			X:               c.GetXIndex(),
			Y:               c.GetYIndex(),
			Z:               c.GetZIndex(),
			Color:           color,
		}
		if layout.HasColor() {
			layout.R, layout.G, layout.B = c.GetRIndex(), c.GetGIndex(), c.GetBIndex()
		}
	}
	layout.Delimiter = c.GetDelimiter()

	if err := layout.Validate(); err != nil {
		return pointcloud.ColumnLayout{}, err
	}
	return layout, nil
}

// LoaderOptions builds loader options from the config.
func (c *LoaderConfig) LoaderOptions() (pointcloud.Options, error) {
	layout, err := c.Layout()
	if err != nil {
		return pointcloud.Options{}, err
	}
	return pointcloud.Options{
		Layout:           layout,
		CenterPoints:     c.GetCenterPoints(),
		MaxChunkSize:     c.GetMaxChunkSize(),
		ProgressInterval: c.GetProgressInterval(),
	}, nil
}

// GetFormat returns the format value or the default.
func (c *LoaderConfig) GetFormat() string {
	if c.Format == nil {
		return "pts"
	}
	return *c.Format
}

// GetElementsPerLine returns the elements_per_line value or the default.
func (c *LoaderConfig) GetElementsPerLine() int {
	if c.ElementsPerLine == nil {
		return 3
	}
	return *c.ElementsPerLine
}

// GetDelimiter returns the delimiter rune. Unset means whitespace.
func (c *LoaderConfig) GetDelimiter() rune {
	if c.Delimiter == nil {
		return pointcloud.WhitespaceDelimiter
	}
	r, _ := utf8.DecodeRuneInString(*c.Delimiter)
	if r == utf8.RuneError {
		return pointcloud.WhitespaceDelimiter
	}
	return r
}

// GetXIndex returns the x_index value or the default.
func (c *LoaderConfig) GetXIndex() int {
	if c.XIndex == nil {
		return 1
	}
	return *c.XIndex
}

// GetYIndex returns the y_index value or the default.
func (c *LoaderConfig) GetYIndex() int {
	if c.YIndex == nil {
		return 2
	}
	return *c.YIndex
}

// GetZIndex returns the z_index value or the default.
func (c *LoaderConfig) GetZIndex() int {
	if c.ZIndex == nil {
		return 3
	}
	return *c.ZIndex
}

// GetColorRange returns the color_range value or the default.
func (c *LoaderConfig) GetColorRange() string {
	if c.ColorRange == nil {
		return "none"
	}
	return *c.ColorRange
}

// GetRIndex returns the r_index value or the default.
func (c *LoaderConfig) GetRIndex() int {
	if c.RIndex == nil {
		return 4
	}
	return *c.RIndex
}

// GetGIndex returns the g_index value or the default.
func (c *LoaderConfig) GetGIndex() int {
	if c.GIndex == nil {
		return 5
	}
	return *c.GIndex
}

// GetBIndex returns the b_index value or the default.
func (c *LoaderConfig) GetBIndex() int {
	if c.BIndex == nil {
		return 6
	}
	return *c.BIndex
}

// GetCenterPoints returns the center_points value or the default.
func (c *LoaderConfig) GetCenterPoints() bool {
	if c.CenterPoints == nil {
		return false
	}
	return *c.CenterPoints
}

// GetMaxChunkSize returns the max_chunk_size value or the default.
func (c *LoaderConfig) GetMaxChunkSize() int {
	if c.MaxChunkSize == nil {
		return pointcloud.DefaultMaxChunkSize
	}
	return *c.MaxChunkSize
}

// GetProgressInterval returns the progress_interval value or the default.
func (c *LoaderConfig) GetProgressInterval() int {
	if c.ProgressInterval == nil {
		return pointcloud.DefaultProgressInterval
	}
	return *c.ProgressInterval
}

// GetPreviewMaxPoints returns the preview_max_points value or the default.
func (c *LoaderConfig) GetPreviewMaxPoints() int {
	if c.PreviewMaxPoints == nil {
		return 20000
	}
	return *c.PreviewMaxPoints
}

// GetHistogramBins returns the histogram_bins value or the default.
func (c *LoaderConfig) GetHistogramBins() int {
	if c.HistogramBins == nil {
		return 64
	}
	return *c.HistogramBins
}

// SetFormat overrides the format, as the command line does.
func (c *LoaderConfig) SetFormat(v string) { c.Format = ptrString(v) }

// SetCenterPoints overrides center_points.
func (c *LoaderConfig) SetCenterPoints(v bool) { c.CenterPoints = ptrBool(v) }

// SetMaxChunkSize overrides max_chunk_size.
func (c *LoaderConfig) SetMaxChunkSize(v int) { c.MaxChunkSize = ptrInt(v) }
