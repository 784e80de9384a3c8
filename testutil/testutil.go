package testutil

import (
	"math/rand"
	"sync"
)

// Point is a coordinate triple.
type Point [3]float64

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64Range returns a pseudo-random number in [minVal, maxVal).
func (r *RNG) Float64Range(minVal, maxVal float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return minVal + r.rand.Float64()*(maxVal-minVal)
}

// UniformPoints returns n distinct points with coordinates in [minVal, maxVal).
func (r *RNG) UniformPoints(n int, minVal, maxVal float64) []Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[Point]struct{}, n)
	pts := make([]Point, 0, n)
	for len(pts) < n {
		p := Point{
			minVal + r.rand.Float64()*(maxVal-minVal),
			minVal + r.rand.Float64()*(maxVal-minVal),
			minVal + r.rand.Float64()*(maxVal-minVal),
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pts = append(pts, p)
	}
	return pts
}

// TriangleSoup returns the vertices of n triangles whose corners are drawn
// from a pool of distinct points, so many corners repeat across triangles.
func (r *RNG) TriangleSoup(n, pool int) [][3]float32 {
	if pool <= 0 {
		pool = 1
	}
	corners := make([][3]float32, pool)
	for i := range corners {
		corners[i] = [3]float32{float32(i % 17), float32(i / 17 % 17), float32(i / 289)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	soup := make([][3]float32, 0, 3*n)
	for range 3 * n {
		soup = append(soup, corners[r.rand.Intn(pool)])
	}
	return soup
}

// GridPoints returns nx*ny*nz points on a regular lattice with the given step.
func GridPoints(nx, ny, nz int, step float64) []Point {
	pts := make([]Point, 0, nx*ny*nz)
	for i := range nx {
		for j := range ny {
			for k := range nz {
				pts = append(pts, Point{float64(i) * step, float64(j) * step, float64(k) * step})
			}
		}
	}
	return pts
}

// Colliding returns n distinct points from candidates whose home bucket,
// according to home, equals target. It returns fewer if candidates run out.
func Colliding(n int, home func(Point) int, target int, candidates []Point) []Point {
	out := make([]Point, 0, n)
	for _, p := range candidates {
		if home(p) == target {
			out = append(out, p)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// CollidingPair searches candidates for two distinct points sharing a home
// bucket. ok is false if none exist.
func CollidingPair(home func(Point) int, candidates []Point) (a, b Point, ok bool) {
	seen := make(map[int]Point, len(candidates))
	for _, p := range candidates {
		h := home(p)
		if q, hit := seen[h]; hit && q != p {
			return q, p, true
		}
		seen[h] = p
	}
	return Point{}, Point{}, false
}
