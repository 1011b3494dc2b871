package core

import (
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing
type Sampler interface {
	Get1D() float64 // uniform in [0, 1)
	Get3D() Vec3    // three independent uniforms in [0, 1)
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; each worker owns one.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded with seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// Reseed restarts the underlying generator from seed
func (r *RandomSampler) Reseed(seed int64) {
	r.random.Seed(seed)
}

// FixedSampler replays a fixed stream of values, wrapping around at the end.
// Used to pin exact random draws in tests.
type FixedSampler struct {
	values []float64
	next   int
}

// NewFixedSampler creates a sampler that returns values in order
func NewFixedSampler(values ...float64) *FixedSampler {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &FixedSampler{values: values}
}

// Get1D returns the next value of the stream
func (f *FixedSampler) Get1D() float64 {
	v := f.values[f.next]
	f.next = (f.next + 1) % len(f.values)
	return v
}

// Get3D returns the next three values of the stream
func (f *FixedSampler) Get3D() Vec3 {
	return NewVec3(f.Get1D(), f.Get1D(), f.Get1D())
}

// RandomRange returns a uniform value in [lo, hi)
func RandomRange(sampler Sampler, lo, hi float64) float64 {
	return lo + (hi-lo)*sampler.Get1D()
}

// RandomVecRange returns a vector with each component uniform in [lo, hi)
func RandomVecRange(sampler Sampler, lo, hi float64) Vec3 {
	u := sampler.Get3D()
	return NewVec3(lo+(hi-lo)*u.X, lo+(hi-lo)*u.Y, lo+(hi-lo)*u.Z)
}

// RandomInUnitSphere generates a random point inside a unit sphere by rejection
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for {
		p := RandomVecRange(sampler, -1, 1)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

// RandomUnitVector generates a random direction on the unit sphere
func RandomUnitVector(sampler Sampler) Vec3 {
	return RandomInUnitSphere(sampler).Normalize()
}

// RandomInUnitDisk generates a random point in a unit disk (for depth of field)
func RandomInUnitDisk(sampler Sampler) Vec3 {
	for {
		// Generate random point in [-1,1] x [-1,1] square
		p := NewVec3(2*sampler.Get1D()-1, 2*sampler.Get1D()-1, 0)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}
