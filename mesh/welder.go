package mesh

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/spatialhash"
	"github.com/hupe1980/spatialhash/resource"
)

// Welder deduplicates vertices through a spatial hash table.
// A Welder is not safe for concurrent use.
type Welder struct {
	table    *spatialhash.Table
	vertices []Vec3
	normals  []Vec3
}

// NewWelder creates a welder. The options configure its table; the table
// capacity bounds the number of distinct vertices per weld.
func NewWelder(optFns ...spatialhash.Option) (*Welder, error) {
	t, err := spatialhash.New(optFns...)
	if err != nil {
		return nil, err
	}
	return &Welder{table: t}, nil
}

// Close releases the welder's table.
func (w *Welder) Close() error {
	return w.table.Close()
}

// Add returns the index of v, appending it if it has not been seen since the
// last Reset.
//
// Fails with spatialhash.ErrTableFull once the table has no free slot, or
// spatialhash.ErrInvalidKey for non-finite positions.
func (w *Welder) Add(v Vec3) (uint32, error) {
	idx, _, err := w.add(v)
	return idx, err
}

func (w *Welder) add(v Vec3) (uint32, bool, error) {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	if idx, ok := w.table.Lookup(x, y, z); ok {
		return uint32(idx), false, nil
	}

	n := len(w.vertices)
	if err := w.table.Set(x, y, z, n); err != nil {
		return 0, false, err
	}
	w.vertices = append(w.vertices, v)
	return uint32(n), true, nil
}

// Vertices returns the distinct vertices added since the last Reset.
// The slice is owned by the welder.
func (w *Welder) Vertices() []Vec3 {
	return w.vertices
}

// Len returns the number of distinct vertices.
func (w *Welder) Len() int {
	return len(w.vertices)
}

// Reset forgets every vertex.
func (w *Welder) Reset() {
	w.table.Reset()
	w.vertices = w.vertices[:0]
	w.normals = w.normals[:0]
}

// Weld resets the welder and converts soup into an indexed mesh.
func (w *Welder) Weld(soup []Vec3) (Mesh, error) {
	return w.weld(soup, nil)
}

// WeldNormals is Weld with one normal per triangle. Each distinct vertex takes
// the normal of the first triangle that references it.
func (w *Welder) WeldNormals(soup, faceNormals []Vec3) (Mesh, error) {
	if faceNormals == nil {
		faceNormals = []Vec3{}
	}
	return w.weld(soup, faceNormals)
}

func (w *Welder) weld(soup, faceNormals []Vec3) (Mesh, error) {
	if err := checkSoup(soup, faceNormals); err != nil {
		return Mesh{}, err
	}

	w.Reset()
	indices := make([]uint32, len(soup))
	for i, v := range soup {
		idx, added, err := w.add(v)
		if err != nil {
			return Mesh{}, fmt.Errorf("mesh: vertex %d of triangle %d: %w", i%3, i/3, err)
		}
		if added && faceNormals != nil {
			w.normals = append(w.normals, faceNormals[i/3])
		}
		indices[i] = idx
	}

	m := Mesh{
		Vertices: slices.Clone(w.vertices),
		Indices:  indices,
	}
	if faceNormals != nil {
		m.Normals = slices.Clone(w.normals)
	}
	return m, nil
}

// WeldAll welds every soup concurrently and returns the meshes in order.
//
// Each worker owns a welder built from optFns. With a non-nil rc, workers
// hold a background slot while welding and each table arena is charged to
// rc's memory budget; otherwise concurrency is bounded by GOMAXPROCS. The
// first error cancels the remaining work.
func WeldAll(ctx context.Context, soups [][]Vec3, rc *resource.Controller, optFns ...spatialhash.Option) ([]Mesh, error) {
	out := make([]Mesh, len(soups))

	g, ctx := errgroup.WithContext(ctx)
	if rc == nil {
		g.SetLimit(runtime.GOMAXPROCS(0))
	}

	opts := append(slices.Clone(optFns), spatialhash.WithResourceController(rc))

	for i, soup := range soups {
		g.Go(func() error {
			if err := rc.AcquireBackground(ctx); err != nil {
				return err
			}
			defer rc.ReleaseBackground()

			if err := ctx.Err(); err != nil {
				return err
			}

			w, err := NewWelder(opts...)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			m, err := w.Weld(soup)
			if err != nil {
				return fmt.Errorf("mesh: soup %d: %w", i, err)
			}
			out[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
