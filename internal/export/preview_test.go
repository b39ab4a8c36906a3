package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cloudload/internal/fsutil"
	"github.com/banshee-data/cloudload/internal/testutil"
)

func TestWritePreviewHTML(t *testing.T) {
	cloud := loadCloud(t, "preview", 100, testutil.PTSLines(1000)...)

	var buf bytes.Buffer
	require.NoError(t, WritePreviewHTML(&buf, cloud, 250))
	html := buf.String()
	assert.Contains(t, html, "Point cloud preview")
	assert.Contains(t, html, "points=1000 shown=250 stride=4 chunks=10")
	assert.Contains(t, html, "scatter3D")
}

func TestWritePreviewHTML_KeepsAllWhenSmall(t *testing.T) {
	cloud := loadCloud(t, "small", 100, testutil.PTSLines(3)...)
	var buf bytes.Buffer
	require.NoError(t, WritePreviewHTML(&buf, cloud, 10))
	assert.Contains(t, buf.String(), "shown=3 stride=1")
}

func TestWritePreviewHTML_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WritePreviewHTML(&buf, loadCloud(t, "empty", 10), 10), ErrNothingToExport)
	assert.Error(t, WritePreviewHTML(&buf, loadCloud(t, "x", 10, "1 2 3 0 0 0 0"), 0))
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#ff0033", hexColor([4]float32{1, 0, 0.2, 1}))
}

func TestWriteElevationHistogram(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	cloud := loadCloud(t, "hist", 100, testutil.PTSLines(500)...)

	require.NoError(t, WriteElevationHistogram(mfs, "/out/hist.png", cloud, 20))
	data := readFile(t, mfs, "/out/hist.png")
	assert.True(t, strings.HasPrefix(string(data), "\x89PNG"), "not a PNG")

	assert.ErrorIs(t, WriteElevationHistogram(mfs, "/out/e.png", loadCloud(t, "empty", 10), 20), ErrNothingToExport)
	assert.Error(t, WriteElevationHistogram(mfs, "/out/z.png", cloud, 0))
}
