package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/banshee-data/cloudload/internal/fsutil"
	"github.com/banshee-data/cloudload/internal/monitoring"
	"github.com/banshee-data/cloudload/internal/pointcloud"
	"github.com/banshee-data/cloudload/internal/version"
)

// ErrNothingToExport is returned when no cloud has any chunk.
var ErrNothingToExport = errors.New("no points to export")

// BuildDocument assembles a glTF scene. Each cloud becomes a node named
// after it with one child node per chunk, and each chunk is a mesh with a
// single POINTS primitive. When root is non-empty, the cloud nodes are
// grouped under a root node of that name.
func BuildDocument(root string, clouds ...*pointcloud.PointCloud) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = version.Generator()

	// Colors come from the per-vertex COLOR_0 attribute.
	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 1, 1, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	doc.Materials = []*gltf.Material{{Name: "points", PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}

	var top []int
	chunks := 0
	for _, cloud := range clouds {
		if cloud == nil {
			continue
		}
		var children []int
		for i := range cloud.Chunks {
			children = append(children, addChunk(doc, &cloud.Chunks[i]))
			chunks++
		}
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: cloud.Name, Children: children})
		top = append(top, len(doc.Nodes)-1)
	}
	if chunks == 0 {
		return nil, ErrNothingToExport
	}

	if root != "" {
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: root, Children: top})
		top = []int{len(doc.Nodes) - 1}
	}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, top...)
	return doc, nil
}

// addChunk writes the chunk's buffers and returns the index of its node.
func addChunk(doc *gltf.Document, c *pointcloud.Chunk) int {
	posAccessor := modeler.WritePosition(doc, c.Positions)
	colorAccessor := modeler.WriteColor(doc, c.Colors)
	indicesAccessor := modeler.WriteIndices(doc, c.Indices)

	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION: posAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
		Indices:  gltf.Index(indicesAccessor),
		Material: gltf.Index(0),
		Mode:     gltf.PrimitivePoints,
	}
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: c.Name, Primitives: []*gltf.Primitive{prim}})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: c.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
	return len(doc.Nodes) - 1
}

// EncodeGLB writes the scene for clouds to w as binary glTF.
func EncodeGLB(w io.Writer, root string, clouds ...*pointcloud.PointCloud) error {
	doc, err := BuildDocument(root, clouds...)
	if err != nil {
		return err
	}
	return encode(w, doc)
}

func encode(w io.Writer, doc *gltf.Document) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode glb: %w", err)
	}
	return nil
}

// WriteGLB writes clouds as top-level nodes of a GLB file at path.
func WriteGLB(fsys fsutil.FileSystem, path string, clouds ...*pointcloud.PointCloud) error {
	return writeGLB(fsys, path, "", clouds)
}

// WriteBatchGLB writes a batch as one root node holding every cloud, in
// load order.
func WriteBatchGLB(fsys fsutil.FileSystem, path string, batch *pointcloud.Batch) error {
	if batch == nil {
		return ErrNothingToExport
	}
	return writeGLB(fsys, path, batch.Name, batch.Clouds)
}

func writeGLB(fsys fsutil.FileSystem, path, root string, clouds []*pointcloud.PointCloud) error {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	// An empty scene must not leave an empty file behind.
	doc, err := BuildDocument(root, clouds...)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := encode(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	monitoring.Logf("export: wrote %d meshes in %d nodes to %s", len(doc.Meshes), len(doc.Nodes), path)
	return nil
}
