package pointcloud

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/banshee-data/cloudload/internal/fsutil"
)

// MaxLineLength bounds a single line. Longer lines abort the load.
const MaxLineLength = 1 << 20

// LineSource produces the lines of a point file. Open must return a fresh
// reader each time so the source can be walked once per pass.
type LineSource interface {
	Open() (io.ReadCloser, error)
	Name() string
}

// FileSource reads a file through a FileSystem, decompressing .gz, .zst
// and .lz4 files transparently.
type FileSource struct {
	FS   fsutil.FileSystem
	Path string
}

// NewFileSource returns a FileSource on the OS filesystem when fsys is nil.
func NewFileSource(fsys fsutil.FileSystem, path string) *FileSource {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	return &FileSource{FS: fsys, Path: path}
}

func (s *FileSource) Name() string { return s.Path }

func (s *FileSource) Open() (io.ReadCloser, error) {
	f, err := s.FS.Open(s.Path)
	if err != nil {
		return nil, err
	}
	rc, err := decompress(s.Path, f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	return rc, nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

func decompress(name string, rc io.ReadCloser) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: zr, close: func() error {
			zr.Close()
			return rc.Close()
		}}, nil
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(rc, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: dec, close: func() error {
			dec.Close()
			return rc.Close()
		}}, nil
	case ".lz4":
		return readCloser{Reader: lz4.NewReader(rc), close: rc.Close}, nil
	}
	return rc, nil
}

// MemorySource serves lines from an in-memory buffer.
type MemorySource struct {
	name string
	data []byte
}

// NewMemorySource wraps data, which must not be modified afterwards.
func NewMemorySource(name string, data []byte) *MemorySource {
	return &MemorySource{name: name, data: data}
}

// LinesSource joins lines with '\n'.
func LinesSource(name string, lines ...string) *MemorySource {
	return NewMemorySource(name, []byte(strings.Join(lines, "\n")))
}

// BufferSource drains r once so a stream that can not be reopened (stdin,
// a network body) can still be walked twice.
func BufferSource(name string, r io.Reader) (*MemorySource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffer %s: %w", name, err)
	}
	return NewMemorySource(name, data), nil
}

func (s *MemorySource) Name() string { return s.name }

func (s *MemorySource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// walkLines calls fn with the 0-based index and text of every line, with
// line terminators stripped. It returns an xxhash fingerprint of the lines
// it saw.
func walkLines(src LineSource, fn func(i int, line string) error) (uint64, error) {
	rc, err := src.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	digest := xxhash.New()
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), MaxLineLength)
	i := 0
	for sc.Scan() {
		b := sc.Bytes()
		digest.Write(b)
		digest.Write([]byte{'\n'})
		if err := fn(i, string(b)); err != nil {
			return 0, err
		}
		i++
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read %s line %d: %w", src.Name(), i+1, err)
	}
	return digest.Sum64(), nil
}

// CountLines returns the number of lines in src.
func CountLines(src LineSource) (int, error) {
	n := 0
	_, err := walkLines(src, func(int, string) error {
		n++
		return nil
	})
	return n, err
}
