package noise

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewParamsRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		p := NewParams(rng)
		assert.GreaterOrEqual(t, p.ModifyX, MinModify)
		assert.Less(t, p.ModifyX, MaxModify)
		assert.GreaterOrEqual(t, p.ModifyY, MinModify)
		assert.Less(t, p.ModifyY, MaxModify)
	}
}

func TestDrift(t *testing.T) {
	p := Params{ModifyX: 50, ModifyY: 80}
	dx, dy := p.Drift(40)
	assert.InDelta(t, 8.0, dx, 1e-9)
	assert.InDelta(t, 5.0, dy, 1e-9)
}

func TestSimplexDeterministic(t *testing.T) {
	params := Params{ModifyX: 60, ModifyY: 70}
	a := NewSimplex(7, params)
	b := NewSimplex(7, params)

	for _, pt := range [][2]float64{{0, 0}, {1.5, 2.25}, {-10, 33.3}, {1000, -0.1}} {
		assert.Equal(t, a.Sample(pt[0], pt[1]), b.Sample(pt[0], pt[1]))
	}
	assert.Equal(t, int64(7), a.Seed())
	assert.Equal(t, params, a.Params())
}

func TestSimplexRangeAndSmoothness(t *testing.T) {
	f := NewSimplex(1, Params{ModifyX: 50, ModifyY: 50})

	prev := f.Sample(0, 3)
	for i := 1; i < 2000; i++ {
		x := float64(i) * 0.05
		v := f.Sample(x, 3)
		assert.False(t, math.IsNaN(v))
		assert.LessOrEqual(t, math.Abs(v), 1.0+1e-9)
		// Neighbouring samples 0.001 apart in field space stay close.
		assert.Less(t, math.Abs(v-prev), 0.05)
		prev = v
	}
}
