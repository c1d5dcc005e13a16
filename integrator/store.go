/*package integrator is a minimal external driver for a cells.CellList. It
owns particle storage, moves particles with a periodic random walk, rescales
the box and reorders particles by cell, raising the matching notifications
on the cell list as it goes. It computes no forces.
*/
package integrator

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/phil-mansfield/cells"
	"github.com/phil-mansfield/cells/geom"
)

// Store holds a box and the particles inside it. It implements cells.System.
type Store struct {
	box geom.Box
	p   *cells.Particles
}

// NewStore wraps every particle into the box and returns the store.
// Non-finite positions are left alone so that binning can report them.
func NewStore(box geom.Box, p *cells.Particles) (*Store, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	for i := range p.Xs {
		if p.Xs[i].Finite() {
			box.Wrap(&p.Xs[i])
		}
	}
	return &Store{box, p}, nil
}

func (s *Store) Box() geom.Box               { return s.box }
func (s *Store) Particles() *cells.Particles { return s.p }

// Step displaces every particle by a uniform random offset in
// [-size, size) along each used axis and wraps it back into the box.
func (s *Store) Step(gen *rand.Rand, size float64) {
	for i := range s.p.Xs {
		x := &s.p.Xs[i]
		for k := 0; k < s.box.Dims; k++ {
			x[k] += size * (2*gen.Float64() - 1)
		}
		s.box.Wrap(x)
	}
}

// Rescale scales the box by f about its center and moves every particle
// with it, keeping its fractional position.
func (s *Store) Rescale(f float64) error {
	if !(f > 0) {
		return fmt.Errorf("Box scale factor must be positive, but is %g.", f)
	}

	old := s.box
	s.box = old.Scale(f)
	for i := range s.p.Xs {
		x := &s.p.Xs[i]
		for k := 0; k < old.Dims; k++ {
			frac := (x[k] - old.Lo[k]) / old.Len(k)
			x[k] = s.box.Lo[k] + frac*s.box.Len(k)
		}
		s.box.Wrap(x)
	}
	return nil
}

// SortByCell reorders the particles so that particles in the same cell of
// cl are contiguous, in increasing cell order. Particles that cl cannot
// place go last. The order within a cell is preserved.
func (s *Store) SortByCell(cl *cells.CellList) {
	n := s.p.N()
	keys := make([]int, n)
	for i := range keys {
		cell, ok := cl.CellOf(s.p.Xs[i])
		if !ok {
			cell = cl.NumCells()
		}
		keys[i] = cell
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return keys[order[i]] < keys[order[j]]
	})

	p := s.p
	xs := make([]geom.Vec, n)
	for i, j := range order {
		xs[i] = p.Xs[j]
	}
	p.Xs = xs

	p.Charges = permuteFloats(p.Charges, order)
	p.Diameters = permuteFloats(p.Diameters, order)
	p.Types = permuteInts(p.Types, order)
	p.Bodies = permuteInts(p.Bodies, order)
}

// permuteFloats returns x reordered so that out[i] = x[order[i]]. Arrays that
// don't cover every particle are returned unchanged.
func permuteFloats(x []float64, order []int) []float64 {
	if len(x) < len(order) {
		return x
	}
	out := make([]float64, len(x))
	copy(out, x)
	for i, j := range order {
		out[i] = x[j]
	}
	return out
}

func permuteInts(x []int, order []int) []int {
	if len(x) < len(order) {
		return x
	}
	out := make([]int, len(x))
	copy(out, x)
	for i, j := range order {
		out[i] = x[j]
	}
	return out
}
