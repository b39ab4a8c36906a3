package export

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cloudload/internal/fsutil"
	"github.com/banshee-data/cloudload/internal/pointcloud"
)

func loadCloud(t *testing.T, name string, maxChunk int, lines ...string) *pointcloud.PointCloud {
	t.Helper()
	layout, err := pointcloud.PresetLayout(pointcloud.FormatPTS)
	require.NoError(t, err)
	l, err := pointcloud.NewLoader(nil, pointcloud.Options{Layout: layout, MaxChunkSize: maxChunk})
	require.NoError(t, err)
	cloud, err := l.LoadSource(name, pointcloud.LinesSource(name, lines...))
	require.NoError(t, err)
	return cloud
}

func readFile(t *testing.T, fsys fsutil.FileSystem, path string) []byte {
	t.Helper()
	f, err := fsys.Open(path)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return data
}
