package integrator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/cells"
	"github.com/phil-mansfield/cells/geom"
)

func randomParticles(gen *rand.Rand, n int, width float64) *cells.Particles {
	p := &cells.Particles{
		Xs:      make([]geom.Vec, n),
		Charges: make([]float64, n),
	}
	for i := range p.Xs {
		for k := 0; k < 3; k++ {
			p.Xs[i][k] = gen.Float64() * width
		}
		p.Charges[i] = float64(i)
	}
	return p
}

func inBox(t *testing.T, s *Store) {
	box := s.Box()
	for i, x := range s.Particles().Xs {
		for k := 0; k < 3; k++ {
			if x[k] < box.Lo[k] || x[k] >= box.Hi[k] {
				t.Fatalf("Particle %d at %v is outside of [%v, %v).",
					i, x, box.Lo, box.Hi)
			}
		}
	}
}

func TestNewStoreWraps(t *testing.T) {
	p := &cells.Particles{Xs: []geom.Vec{{-1, 12, 5}, {10, 0, 0}}}
	s, err := NewStore(geom.NewBox(10, 3), p)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{9, 2, 5}, s.Particles().Xs[0][:], 1e-12)
	assert.Equal(t, geom.Vec{0, 0, 0}, s.Particles().Xs[1])

	_, err = NewStore(geom.NewBox(10, 4), p)
	assert.Error(t, err)
}

func TestStepStaysInBox(t *testing.T) {
	gen := rand.New(rand.NewSource(1))
	s, err := NewStore(geom.NewBox(5, 3), randomParticles(gen, 500, 5))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		s.Step(gen, 1.5)
		inBox(t, s)
	}
}

func TestStep2DKeepsZ(t *testing.T) {
	gen := rand.New(rand.NewSource(2))
	box := geom.Box{Hi: geom.Vec{5, 5, 1}, Dims: 2}
	p := &cells.Particles{Xs: []geom.Vec{{1, 1, 0.5}, {4, 4, 0.25}}}
	s, err := NewStore(box, p)
	require.NoError(t, err)

	s.Step(gen, 0.5)
	assert.Equal(t, 0.5, s.Particles().Xs[0][2])
	assert.Equal(t, 0.25, s.Particles().Xs[1][2])
}

func TestRescale(t *testing.T) {
	p := &cells.Particles{Xs: []geom.Vec{{1, 2, 3}, {9, 9, 9}}}
	s, err := NewStore(geom.NewBox(10, 3), p)
	require.NoError(t, err)

	require.NoError(t, s.Rescale(2))
	box := s.Box()
	assert.Equal(t, geom.Vec{-5, -5, -5}, box.Lo)
	assert.Equal(t, geom.Vec{15, 15, 15}, box.Hi)
	assert.InDeltaSlice(t, []float64{-3, -1, 1}, s.Particles().Xs[0][:], 1e-12)
	assert.InDeltaSlice(t, []float64{13, 13, 13}, s.Particles().Xs[1][:], 1e-12)

	assert.Error(t, s.Rescale(0))
}

func TestSortByCell(t *testing.T) {
	gen := rand.New(rand.NewSource(3))
	s, err := NewStore(geom.NewBox(4, 3), randomParticles(gen, 200, 4))
	require.NoError(t, err)

	cl, err := cells.New(s, cells.DefaultParams())
	require.NoError(t, err)
	require.NoError(t, cl.Compute(0))

	before := map[float64]geom.Vec{}
	for i, x := range s.p.Xs {
		before[s.p.Charges[i]] = x
	}

	s.SortByCell(cl)

	prev := -1
	for i, x := range s.p.Xs {
		cell, ok := cl.CellOf(x)
		require.True(t, ok)
		assert.GreaterOrEqual(t, cell, prev)
		prev = cell

		// Charges travel with their particles.
		assert.Equal(t, before[s.p.Charges[i]], x)
	}
}

func TestSortByCellColumns(t *testing.T) {
	p := &cells.Particles{
		Xs:        []geom.Vec{{3.5, 3.5, 3.5}, {0.5, 0.5, 0.5}, {1.5, 0.5, 0.5}},
		Types:     []int{3, 1, 2},
		Diameters: []float64{0.3, 0.1, 0.2},
		Bodies:    []int{30, 10, 20},
	}
	s, err := NewStore(geom.NewBox(4, 3), p)
	require.NoError(t, err)

	cl, err := cells.New(s, cells.DefaultParams())
	require.NoError(t, err)
	require.NoError(t, cl.Compute(0))

	s.SortByCell(cl)
	assert.Equal(t, []geom.Vec{{0.5, 0.5, 0.5}, {1.5, 0.5, 0.5}, {3.5, 3.5, 3.5}}, s.p.Xs)
	assert.Equal(t, []int{1, 2, 3}, s.p.Types)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, s.p.Diameters)
	assert.Equal(t, []int{10, 20, 30}, s.p.Bodies)
	assert.Nil(t, s.p.Charges)
}

func TestDriverRun(t *testing.T) {
	gen := rand.New(rand.NewSource(4))
	s, err := NewStore(geom.NewBox(6, 3), randomParticles(gen, 300, 6))
	require.NoError(t, err)

	cl, err := cells.New(s, cells.DefaultParams())
	require.NoError(t, err)

	d, err := NewDriver(s, cl, Config{StepSize: 0.3, BoxScale: 1, SortInterval: 3})
	require.NoError(t, err)
	require.NoError(t, d.Run(9))

	assert.Equal(t, uint64(9), d.CurrentStep())
	assert.True(t, cl.Valid())

	st := cl.Stats()
	assert.Equal(t, 1, st.FullRebuilds)
	assert.Equal(t, 10, st.BinPasses)

	total := 0
	for _, size := range cl.CellSizes() {
		total += int(size)
	}
	assert.Equal(t, 300, total)
}

func TestDriverRescale(t *testing.T) {
	gen := rand.New(rand.NewSource(5))
	s, err := NewStore(geom.NewBox(6, 3), randomParticles(gen, 100, 6))
	require.NoError(t, err)

	cl, err := cells.New(s, cells.DefaultParams())
	require.NoError(t, err)

	d, err := NewDriver(s, cl, Config{StepSize: 0.1, BoxScale: 1.1})
	require.NoError(t, err)
	require.NoError(t, d.Run(5))

	inBox(t, s)
	st := cl.Stats()
	assert.Equal(t, 6, st.BinPasses)
	assert.Equal(t, 5, st.FullRebuilds+st.WidthUpdates-1)
	// 6 * 1.1^5 is about 9.66, so the box has gained three cells per axis.
	assert.Equal(t, [3]int{9, 9, 9}, cl.Dim())
}

func TestNewDriverErrors(t *testing.T) {
	s, err := NewStore(geom.NewBox(6, 3), &cells.Particles{})
	require.NoError(t, err)
	cl, err := cells.New(s, cells.DefaultParams())
	require.NoError(t, err)

	_, err = NewDriver(s, cl, Config{BoxScale: 0})
	assert.Error(t, err)
	_, err = NewDriver(s, cl, Config{BoxScale: 1, StepSize: -1})
	assert.Error(t, err)
	_, err = NewDriver(s, cl, Config{BoxScale: 1, SortInterval: -2})
	assert.Error(t, err)
}
