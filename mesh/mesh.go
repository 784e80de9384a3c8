package mesh

import (
	"errors"
	"fmt"
)

// ErrInvalidSoup is returned when a soup does not describe whole triangles.
var ErrInvalidSoup = errors.New("mesh: invalid triangle soup")

// Vec3 is a vertex position or normal.
type Vec3 struct {
	X, Y, Z float32
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []Vec3
	// Normals is parallel to Vertices, or nil if the soup had none.
	Normals []Vec3
	Indices []uint32
}

// VertexCount returns the number of distinct vertices.
func (m Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Unweld expands the mesh back into a triangle soup.
func (m Mesh) Unweld() []Vec3 {
	soup := make([]Vec3, len(m.Indices))
	for i, idx := range m.Indices {
		soup[i] = m.Vertices[idx]
	}
	return soup
}

func checkSoup(soup, normals []Vec3) error {
	if len(soup)%3 != 0 {
		return fmt.Errorf("%w: %d vertices is not a multiple of 3", ErrInvalidSoup, len(soup))
	}
	if normals != nil && len(normals)*3 != len(soup) {
		return fmt.Errorf("%w: %d face normals for %d triangles", ErrInvalidSoup, len(normals), len(soup)/3)
	}
	return nil
}
