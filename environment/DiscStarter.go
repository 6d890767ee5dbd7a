package environment

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// DiscStarter samples positions uniformly from a horizontal disc. Start
// returns 3-dimensional (x, y, z) vectors where y, the vertical axis, is
// fixed to the height of the disc and (x, z) lies within the disc
// radius of the origin.
type DiscStarter struct {
	radius float64
	height float64
	seed   uint64
	rand   *distmv.Uniform
}

// NewDiscStarter returns a new DiscStarter which samples from a disc of
// the given radius at the given height
func NewDiscStarter(radius, height float64, seed uint64) (*DiscStarter,
	error) {
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("newDiscStarter: radius must be finite and "+
			"non-negative \n\thave(%v)", radius)
	}

	source := rand.NewSource(seed)
	bounds := []r1.Interval{
		{Min: -radius, Max: radius},
		{Min: -radius, Max: radius},
	}

	return &DiscStarter{
		radius: radius,
		height: height,
		seed:   seed,
		rand:   distmv.NewUniform(bounds, source),
	}, nil
}

// Start returns a new (x, y, z) position in the disc. Points are drawn
// from the square enclosing the disc until one falls inside it.
func (d *DiscStarter) Start() *mat.VecDense {
	var point []float64
	for {
		point = d.rand.Rand(point)
		if math.Hypot(point[0], point[1]) <= d.radius {
			break
		}
	}

	return mat.NewVecDense(3, []float64{point[0], d.height, point[1]})
}

// Radius returns the radius of the disc
func (d *DiscStarter) Radius() float64 {
	return d.radius
}

// Height returns the fixed height of sampled points
func (d *DiscStarter) Height() float64 {
	return d.height
}
