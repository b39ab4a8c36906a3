// Package pointcloud owns ingestion of plain-text point-cloud files.
//
// Responsibilities: tokenizing data lines according to a ColumnLayout,
// a streaming bounds pass, the centering/handedness transform, building
// the ordered point buffer, and partitioning it into chunks no larger than
// a renderer's per-primitive vertex ceiling.
// Key types: ColumnLayout, PointRecord, Extent, Chunk, PointCloud.
//
// A load reads its source twice: once to count valid points and compute
// the extent, once to build the buffer. Both passes share the same
// extraction code so the counts agree unless the source changed in between.
package pointcloud
