package export

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cloudload/internal/fsutil"
)

func TestWriteASC(t *testing.T) {
	dir := t.TempDir()
	cloud := loadCloud(t, "scan", 1,
		"1 2 3 0 255 0 51",
		"4 5 6 0 0 510 -10",
	)
	path, err := WriteASC(nil, dir, cloud)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scan.asc"), path)

	data := string(readFile(t, fsutil.OSFileSystem{}, path))
	lines := strings.Split(strings.TrimRight(data, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "# Exported points", lines[0])
	assert.Equal(t, "# Format: X Y Z R G B", lines[3])
	assert.Equal(t, "1.000000 2.000000 -3.000000 255 0 51", lines[4])
	assert.Equal(t, "4.000000 5.000000 -6.000000 0 255 0", lines[5])
}

func TestWriteASC_SanitisesName(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	dir := t.TempDir()
	cloud := loadCloud(t, "ok", 10, "1 2 3 0 0 0 0")
	cloud.Name = "../../etc/passwd"

	path, err := WriteASC(mfs, dir, cloud)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, mfs.Exists(path))
}

func TestWriteASC_Errors(t *testing.T) {
	_, err := WriteASC(nil, t.TempDir(), loadCloud(t, "empty", 10))
	assert.ErrorIs(t, err, ErrNothingToExport)

	_, err = WriteASC(nil, "", loadCloud(t, "x", 10, "1 2 3 0 0 0 0"))
	assert.Error(t, err)
}

func TestChannel255(t *testing.T) {
	tests := map[float32]int{0: 0, 1: 255, 0.2: 51, -1: 0, 2: 255, 0.5: 128}
	for in, want := range tests {
		assert.Equal(t, want, channel255(in), "channel255(%v)", in)
	}
}
