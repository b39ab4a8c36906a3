// Package export writes loaded point clouds to renderable and inspectable
// formats: binary glTF scenes, CloudCompare ASC text, an HTML scatter
// preview and an elevation histogram.
package export
