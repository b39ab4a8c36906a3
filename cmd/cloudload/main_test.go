package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cloudload/internal/catalog"
	"github.com/banshee-data/cloudload/internal/db"
	"github.com/banshee-data/cloudload/internal/fsutil"
	"github.com/banshee-data/cloudload/internal/testutil"
)

// resetFlags restores every flag to its default when the test ends.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		*configFile, *format, *center, *maxChunk = "", "", false, 0
		*inputFile, *inputDir, *outDir = "", "", "."
		*writeGLB, *writeASC, *writeHTML, *writeHist = false, false, false, false
		*dbPath = ""
		stdin = os.Stdin
	})
}

func openCatalog(t *testing.T, path string) *catalog.Store {
	t.Helper()
	d, err := db.OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return catalog.NewStore(d.DB)
}

func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, "", *configFile)
	assert.Equal(t, ".", *outDir)
	assert.Equal(t, 0, *maxChunk)
	assert.False(t, *center)
	assert.Equal(t, "", *dbPath)
}

func TestRun_RequiresOneInput(t *testing.T) {
	resetFlags(t)
	fsys := fsutil.OSFileSystem{}

	err := run(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of -file or -dir")

	*inputFile, *inputDir = "a.pts", "clouds"
	require.Error(t, run(fsys))
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "loader.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"format": "pts", "max_chunk_size": 100, "histogram_bins": 8}`), 0644))

	*configFile = path
	*format = "xyz"
	*center = true
	*maxChunk = 7
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "xyz", cfg.GetFormat())
	assert.True(t, cfg.GetCenterPoints())
	assert.Equal(t, 7, cfg.GetMaxChunkSize())
	assert.Equal(t, 8, cfg.GetHistogramBins())

	*maxChunk = -1
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestRun_FileWithExports(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	fsys := fsutil.OSFileSystem{}
	testutil.WriteLines(t, fsys, filepath.Join(dir, "in", "scan.pts"), testutil.PTSLines(25)...)

	*inputFile = filepath.Join(dir, "in", "scan.pts")
	*outDir = filepath.Join(dir, "out")
	*maxChunk = 10
	*writeGLB, *writeASC, *writeHTML, *writeHist = true, true, true, true
	*dbPath = filepath.Join(dir, "catalog.db")

	require.NoError(t, run(fsys))

	for _, name := range []string{"scan.glb", "scan.asc", "scan.html", "scan.png"} {
		assert.FileExists(t, filepath.Join(dir, "out", name))
	}

	runs, err := openCatalog(t, *dbPath).ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, catalog.StatusOK, runs[0].Status)
	assert.Equal(t, 25, runs[0].ValidPoints)
	assert.Equal(t, 3, runs[0].ChunkCount)
}

func TestRun_Stdin(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	stdin = strings.NewReader(string(testutil.Join(testutil.PTSLines(4)...)))

	*inputFile = "-"
	*outDir = dir
	*writeASC = true

	require.NoError(t, run(fsutil.OSFileSystem{}))

	data, err := os.ReadFile(filepath.Join(dir, "stdin.asc"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Source: stdin")
}

func TestRun_BatchWithFailure(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	fsys := fsutil.OSFileSystem{}
	batchDir := filepath.Join(dir, "north")
	testutil.WriteLines(t, fsys, filepath.Join(batchDir, "a.pts"), testutil.PTSLines(5)...)
	testutil.WriteLines(t, fsys, filepath.Join(batchDir, "b.pts"), testutil.PTSLines(3)...)
	testutil.WriteLines(t, fsys, filepath.Join(batchDir, "README"), "not a cloud")

	*inputDir = batchDir
	*outDir = filepath.Join(dir, "out")
	*writeGLB = true
	*dbPath = filepath.Join(dir, "catalog.db")

	err := run(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 loads failed")
	assert.FileExists(t, filepath.Join(dir, "out", "north.glb"))

	runs, err := openCatalog(t, *dbPath).ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	statuses := map[string]string{}
	for _, r := range runs {
		assert.Equal(t, "north", r.BatchName)
		statuses[r.CloudName] = r.Status
	}
	assert.Equal(t, catalog.StatusOK, statuses["a"])
	assert.Equal(t, catalog.StatusOK, statuses["b"])
	assert.Equal(t, catalog.StatusFailed, statuses[filepath.Join(batchDir, "README")])
}

func TestRun_MissingFileFails(t *testing.T) {
	resetFlags(t)
	*inputFile = filepath.Join(t.TempDir(), "missing.pts")
	err := run(fsutil.OSFileSystem{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 loads failed")
}
