// Package mesh welds triangle soups into indexed meshes.
//
// A triangle soup lists three vertices per triangle, so shared corners are
// repeated. A Welder deduplicates exact-equal positions through a
// spatialhash.Table and emits each distinct vertex once, with an index buffer
// referencing it:
//
//	w, _ := mesh.NewWelder()
//	defer w.Close()
//	m, _ := w.Weld(soup)
//	// m.Vertices holds distinct positions, m.Indices three entries per triangle.
//
// WeldAll welds many soups concurrently, one table per worker.
package mesh
