package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/cloudload/internal/catalog"
	"github.com/banshee-data/cloudload/internal/config"
	"github.com/banshee-data/cloudload/internal/db"
	"github.com/banshee-data/cloudload/internal/export"
	"github.com/banshee-data/cloudload/internal/fsutil"
	"github.com/banshee-data/cloudload/internal/monitoring"
	"github.com/banshee-data/cloudload/internal/pointcloud"
	"github.com/banshee-data/cloudload/internal/security"
	"github.com/banshee-data/cloudload/internal/version"
)

var (
	configFile  = flag.String("config", "", "Path to a JSON loader config (defaults apply when empty)")
	format      = flag.String("format", "", "Column format: pts, xyz, xyzrgb or custom (overrides config)")
	center      = flag.Bool("center", false, "Center points on the midpoint of their extent")
	maxChunk    = flag.Int("max-chunk", 0, "Maximum points per chunk (overrides config)")
	inputFile   = flag.String("file", "", "Point cloud file to load; - reads standard input")
	inputDir    = flag.String("dir", "", "Directory of point cloud files to load as one batch")
	outDir      = flag.String("out", ".", "Output directory for exports")
	writeGLB    = flag.Bool("glb", false, "Write a GLB scene")
	writeASC    = flag.Bool("asc", false, "Write an ASC text export per cloud")
	writeHTML   = flag.Bool("preview", false, "Write an HTML 3D preview per cloud")
	writeHist   = flag.Bool("hist", false, "Write an elevation histogram PNG per cloud")
	dbPath      = flag.String("db", "", "SQLite catalog path (empty disables the catalog)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// stdin is read when -file is "-".
var stdin io.Reader = os.Stdin

// stdinName names clouds read from standard input.
const stdinName = "stdin"

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if err := run(fsutil.OSFileSystem{}); err != nil {
		log.Fatalf("cloudload: %v", err)
	}
}

// loadConfig reads -config (if any) and applies flag overrides.
func loadConfig() (*config.LoaderConfig, error) {
	cfg := config.EmptyLoaderConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadLoaderConfig(*configFile)
		if err != nil {
			return nil, err
		}
	}
	if *format != "" {
		cfg.SetFormat(*format)
	}
	if *center {
		cfg.SetCenterPoints(true)
	}
	if *maxChunk != 0 {
		cfg.SetMaxChunkSize(*maxChunk)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run performs one invocation. It returns an error when the configuration
// is unusable or when any load failed.
func run(fsys fsutil.FileSystem) error {
	if (*inputFile == "") == (*inputDir == "") {
		return errors.New("exactly one of -file or -dir is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.LoaderOptions()
	if err != nil {
		return err
	}
	opts.Progress = monitoring.ProgressLogger("cloudload")

	loader, err := pointcloud.NewLoader(fsys, opts)
	if err != nil {
		return err
	}
	monitoring.Logf("cloudload: %s layout %s", version.Generator(), opts.Layout)

	var store *catalog.Store
	if *dbPath != "" {
		d, err := db.OpenDB(*dbPath)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer d.Close()
		store = catalog.NewStore(d.DB)
	}

	if exporting() {
		if err := fsys.MkdirAll(*outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	r := &runner{fsys: fsys, cfg: cfg, opts: loader.Options(), store: store}
	if *inputDir != "" {
		batch, err := loader.LoadBatch(*inputDir)
		if err != nil {
			return err
		}
		r.batch(batch)
	} else {
		cloud, err := loadInput(loader, *inputFile)
		if err != nil {
			monitoring.Logf("cloudload: %v", err)
			r.failed(*inputFile, "", err)
		} else {
			r.loaded(cloud, "")
			if *writeGLB {
				path, err := security.OutputPath(*outDir, cloud.Name, ".glb")
				if err == nil {
					err = export.WriteGLB(fsys, path, cloud)
				}
				r.exported("glb", cloud.Name, path, err)
			}
		}
	}

	if r.failures > 0 {
		return fmt.Errorf("%d of %d loads failed", r.failures, r.loads)
	}
	return nil
}

func loadInput(loader *pointcloud.Loader, path string) (*pointcloud.PointCloud, error) {
	if path != "-" {
		return loader.LoadFile(path)
	}
	src, err := pointcloud.BufferSource(stdinName, stdin)
	if err != nil {
		return nil, err
	}
	return loader.LoadSource(stdinName, src)
}

func exporting() bool {
	return *writeGLB || *writeASC || *writeHTML || *writeHist
}

// runner records and exports the results of one invocation.
type runner struct {
	fsys     fsutil.FileSystem
	cfg      *config.LoaderConfig
	opts     pointcloud.Options
	store    *catalog.Store
	loads    int
	failures int
}

func (r *runner) batch(b *pointcloud.Batch) {
	for _, c := range b.Clouds {
		r.loaded(c, b.Name)
	}
	for _, f := range b.Failures {
		r.failed(f.Path, b.Name, f.Err)
	}
	monitoring.Logf("cloudload: batch %s: %d clouds, %d points, %d failed",
		b.Name, len(b.Clouds), b.PointCount(), len(b.Failures))

	if *writeGLB {
		path, err := security.OutputPath(*outDir, b.Name, ".glb")
		if err == nil {
			err = export.WriteBatchGLB(r.fsys, path, b)
		}
		r.exported("glb", b.Name, path, err)
	}
}

func (r *runner) loaded(cloud *pointcloud.PointCloud, batchName string) {
	r.loads++
	if r.store != nil {
		run, chunks := catalog.RunFromCloud(cloud, batchName)
		if err := r.store.RecordRun(run, chunks); err != nil {
			monitoring.Logf("cloudload: failed to record run for %s: %v", cloud.Name, err)
		}
	}

	if *writeASC {
		path, err := export.WriteASC(r.fsys, *outDir, cloud)
		r.exported("asc", cloud.Name, path, err)
	}
	if *writeHTML {
		path, err := security.OutputPath(*outDir, cloud.Name, ".html")
		if err == nil {
			err = r.writePreview(path, cloud)
		}
		r.exported("preview", cloud.Name, path, err)
	}
	if *writeHist {
		path, err := security.OutputPath(*outDir, cloud.Name, ".png")
		if err == nil {
			err = export.WriteElevationHistogram(r.fsys, path, cloud, r.cfg.GetHistogramBins())
		}
		r.exported("histogram", cloud.Name, path, err)
	}
}

func (r *runner) failed(path, batchName string, loadErr error) {
	r.loads++
	r.failures++
	if r.store == nil {
		return
	}
	if err := r.store.RecordRun(catalog.FailedRun(path, batchName, r.opts, loadErr), nil); err != nil {
		monitoring.Logf("cloudload: failed to record failed run for %s: %v", path, err)
	}
}

func (r *runner) writePreview(path string, cloud *pointcloud.PointCloud) error {
	f, err := r.fsys.Create(path)
	if err != nil {
		return err
	}
	if err := export.WritePreviewHTML(f, cloud, r.cfg.GetPreviewMaxPoints()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// exported logs the outcome of one export. An empty cloud has nothing to
// export and is not an error.
func (r *runner) exported(kind, name, path string, err error) {
	switch {
	case err == nil:
		monitoring.Logf("cloudload: wrote %s %s", kind, path)
	case errors.Is(err, export.ErrNothingToExport):
		monitoring.Logf("cloudload: %s: no points, skipping %s", name, kind)
	default:
		monitoring.Logf("cloudload: %s: %s export failed: %v", name, kind, err)
	}
}
