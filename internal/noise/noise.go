// Package noise provides the coherent noise field that animates the mosaic.
package noise

import (
	"math/rand"

	"github.com/ojrac/opensimplex-go"
)

// MinModify and MaxModify bound the per-axis scale factors.
const (
	MinModify = 50.0
	MaxModify = 100.0
)

// Field is a continuous 2D noise field with values roughly in [-1, 1].
type Field interface {
	Sample(x, y float64) float64
}

// Params stretch the field independently on each axis. They are fixed per session.
type Params struct {
	ModifyX float64
	ModifyY float64
}

// NewParams draws ModifyX and ModifyY uniformly from [50, 100).
func NewParams(rng *rand.Rand) Params {
	return Params{
		ModifyX: MinModify + rng.Float64()*(MaxModify-MinModify),
		ModifyY: MinModify + rng.Float64()*(MaxModify-MinModify),
	}
}

// Drift returns how far the field has moved along each axis after frameCount frames.
func (p Params) Drift(frameCount int) (dx, dy float64) {
	return float64(frameCount) / (p.ModifyX / 10), float64(frameCount) / (p.ModifyY / 10)
}

// Simplex is an OpenSimplex field sampled at (x/ModifyX, y/ModifyY).
type Simplex struct {
	noise  opensimplex.Noise
	params Params
	seed   int64
}

// NewSimplex creates a deterministic field for seed.
func NewSimplex(seed int64, params Params) *Simplex {
	return &Simplex{
		noise:  opensimplex.New(seed),
		params: params,
		seed:   seed,
	}
}

// Sample implements Field.
func (s *Simplex) Sample(x, y float64) float64 {
	return s.noise.Eval2(x/s.params.ModifyX, y/s.params.ModifyY)
}

// Params returns the axis scale factors.
func (s *Simplex) Params() Params {
	return s.params
}

// Seed returns the seed the field was built from.
func (s *Simplex) Seed() int64 {
	return s.seed
}

var _ Field = (*Simplex)(nil)
