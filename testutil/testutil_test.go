package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformPoints(t *testing.T) {
	rng := NewRNG(4711)

	pts := rng.UniformPoints(64, -1, 1)

	assert.Len(t, pts, 64)
	seen := map[Point]bool{}
	for _, p := range pts {
		for _, c := range p {
			assert.GreaterOrEqual(t, c, -1.0)
			assert.Less(t, c, 1.0)
		}
		assert.False(t, seen[p], "duplicate point %v", p)
		seen[p] = true
	}
}

func TestRNGReset(t *testing.T) {
	rng := NewRNG(7)
	a := rng.UniformPoints(4, 0, 1)
	rng.Reset()
	b := rng.UniformPoints(4, 0, 1)
	assert.Equal(t, a, b)
	assert.Equal(t, int64(7), rng.Seed())
}

func TestGridPoints(t *testing.T) {
	pts := GridPoints(2, 3, 4, 0.5)

	assert.Len(t, pts, 24)
	assert.Equal(t, Point{0, 0, 0}, pts[0])
	assert.Equal(t, Point{0.5, 1, 1.5}, pts[len(pts)-1])
}

func TestTriangleSoup(t *testing.T) {
	rng := NewRNG(1)

	soup := rng.TriangleSoup(10, 5)

	assert.Len(t, soup, 30)
	distinct := map[[3]float32]bool{}
	for _, v := range soup {
		distinct[v] = true
	}
	assert.LessOrEqual(t, len(distinct), 5)
}

func TestColliding(t *testing.T) {
	home := func(p Point) int { return int(p[0]) % 3 }
	pts := GridPoints(9, 1, 1, 1)

	got := Colliding(2, home, 1, pts)

	require.Len(t, got, 2)
	assert.Equal(t, Point{1, 0, 0}, got[0])
	assert.Equal(t, Point{4, 0, 0}, got[1])
}

func TestCollidingPair(t *testing.T) {
	home := func(p Point) int { return int(p[0]) % 3 }

	a, b, ok := CollidingPair(home, GridPoints(5, 1, 1, 1))

	require.True(t, ok)
	assert.Equal(t, home(a), home(b))
	assert.NotEqual(t, a, b)

	_, _, ok = CollidingPair(home, GridPoints(3, 1, 1, 1))
	assert.False(t, ok)
}
