package mesh

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spatialhash"
	"github.com/hupe1980/spatialhash/resource"
	"github.com/hupe1980/spatialhash/testutil"
)

// quad is two triangles sharing an edge.
var quad = []Vec3{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0},
	{0, 0, 0}, {1, 1, 0}, {0, 1, 0},
}

func newWelder(t *testing.T, opts ...spatialhash.Option) *Welder {
	t.Helper()
	w, err := NewWelder(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func soupOf(rng *testutil.RNG, triangles, pool int) []Vec3 {
	raw := rng.TriangleSoup(triangles, pool)
	soup := make([]Vec3, len(raw))
	for i, v := range raw {
		soup[i] = Vec3{v[0], v[1], v[2]}
	}
	return soup
}

func TestWeldQuad(t *testing.T) {
	w := newWelder(t)

	m, err := w.Weld(quad)
	require.NoError(t, err)

	assert.Equal(t, []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, m.Vertices)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 2, m.TriangleCount())
	assert.Nil(t, m.Normals)
	assert.Equal(t, quad, m.Unweld())
}

func TestWeldResetsBetweenCalls(t *testing.T) {
	w := newWelder(t)

	_, err := w.Weld(quad)
	require.NoError(t, err)

	m, err := w.Weld(quad[3:])
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	assert.Equal(t, 3, w.Len())
}

func TestWeldRandomSoup(t *testing.T) {
	w := newWelder(t)
	soup := soupOf(testutil.NewRNG(3), 500, 200)

	m, err := w.Weld(soup)
	require.NoError(t, err)

	assert.LessOrEqual(t, m.VertexCount(), 200)
	assert.Len(t, m.Indices, len(soup))
	assert.Equal(t, soup, m.Unweld())

	seen := map[Vec3]bool{}
	for _, v := range m.Vertices {
		assert.False(t, seen[v], "vertex %v emitted twice", v)
		seen[v] = true
	}
}

func TestWeldNormals(t *testing.T) {
	w := newWelder(t)
	up, side := Vec3{0, 0, 1}, Vec3{1, 0, 0}

	m, err := w.WeldNormals(quad, []Vec3{up, side})
	require.NoError(t, err)

	// Vertex 3 first appears in the second triangle.
	assert.Equal(t, []Vec3{up, up, up, side}, m.Normals)

	_, err = w.WeldNormals(quad, []Vec3{up})
	assert.ErrorIs(t, err, ErrInvalidSoup)
	_, err = w.WeldNormals(quad, nil)
	assert.ErrorIs(t, err, ErrInvalidSoup)
}

func TestWeldInvalidSoup(t *testing.T) {
	w := newWelder(t)

	_, err := w.Weld(quad[:4])
	assert.ErrorIs(t, err, ErrInvalidSoup)

	m, err := w.Weld(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.TriangleCount())
}

func TestWeldTableFull(t *testing.T) {
	w := newWelder(t, spatialhash.WithCapacity(3))

	_, err := w.Weld(quad)
	assert.ErrorIs(t, err, spatialhash.ErrTableFull)
}

func TestAdd(t *testing.T) {
	w := newWelder(t)

	a, err := w.Add(Vec3{1, 2, 3})
	require.NoError(t, err)
	b, err := w.Add(Vec3{4, 5, 6})
	require.NoError(t, err)
	c, err := w.Add(Vec3{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, uint32(0), a)
	assert.Equal(t, uint32(1), b)
	assert.Equal(t, a, c)
	assert.Equal(t, []Vec3{{1, 2, 3}, {4, 5, 6}}, w.Vertices())

	_, err = w.Add(Vec3{X: float32(math.NaN())})
	assert.ErrorIs(t, err, spatialhash.ErrInvalidKey)

	w.Reset()
	assert.Equal(t, 0, w.Len())
}

func TestWeldAll(t *testing.T) {
	rng := testutil.NewRNG(11)
	soups := make([][]Vec3, 12)
	for i := range soups {
		soups[i] = soupOf(rng, 100+i*10, 50+i)
	}

	check := func(t *testing.T, meshes []Mesh) {
		t.Helper()
		require.Len(t, meshes, len(soups))
		for i, m := range meshes {
			assert.Equal(t, soups[i], m.Unweld())
			assert.LessOrEqual(t, m.VertexCount(), 50+i)
		}
	}

	t.Run("Unbounded", func(t *testing.T) {
		meshes, err := WeldAll(context.Background(), soups, nil)
		require.NoError(t, err)
		check(t, meshes)
	})

	t.Run("Controller", func(t *testing.T) {
		rc := resource.NewController(resource.Config{
			MaxBackgroundWorkers: 2,
			MemoryLimitBytes:     8 << 20,
		})
		meshes, err := WeldAll(context.Background(), soups, rc)
		require.NoError(t, err)
		check(t, meshes)
		assert.Equal(t, int64(0), rc.MemoryUsage())
	})

	t.Run("FirstErrorWins", func(t *testing.T) {
		bad := append([][]Vec3{quad[:2]}, soups...)
		_, err := WeldAll(context.Background(), bad, nil)
		assert.ErrorIs(t, err, ErrInvalidSoup)
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := WeldAll(ctx, soups, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
