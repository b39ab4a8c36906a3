package pointcloud

// Transform moves raw points into the output coordinate system: an
// optional translation followed by negating Z. Source files are
// right-handed; the output is left-handed, so the flip always applies.
type Transform struct {
	Translation [3]float64
}

// NewTransform centers on the extent midpoint when center is set.
func NewTransform(extent Extent, center bool) Transform {
	if !center {
		return Transform{}
	}
	return Transform{Translation: extent.Center()}
}

// Apply returns the output position of p.
func (t Transform) Apply(p RawPoint) [3]float32 {
	return [3]float32{
		float32(p.X - t.Translation[0]),
		float32(p.Y - t.Translation[1]),
		float32((p.Z - t.Translation[2]) * -1),
	}
}
