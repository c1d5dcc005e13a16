package cells

import (
	"errors"
	"fmt"
)

// ErrorKind identifies one of the fatal conditions of a binning pass.
type ErrorKind int

const (
	// NonFiniteCoordinate means a particle position contains NaN or Inf.
	NonFiniteCoordinate ErrorKind = iota
	// ParticleOutOfBounds means a particle has left the periodic box.
	ParticleOutOfBounds
	// CellOverflow means some cell received more than Nmax particles.
	CellOverflow
)

var (
	ErrNonFinite   = errors.New("cells: particle position is not finite")
	ErrOutOfBounds = errors.New("cells: particle is outside the simulation box")
	ErrOverflow    = errors.New("cells: cell occupancy exceeds capacity")

	// ErrCellBudget is returned by ComputeDimensions when no grid fits in
	// MaxCells.
	ErrCellBudget = errors.New("cells: cell budget is too small for the box")
)

func (k ErrorKind) String() string {
	switch k {
	case NonFiniteCoordinate:
		return "NonFiniteCoordinate"
	case ParticleOutOfBounds:
		return "ParticleOutOfBounds"
	case CellOverflow:
		return "CellOverflow"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) sentinel() error {
	switch k {
	case NonFiniteCoordinate:
		return ErrNonFinite
	case ParticleOutOfBounds:
		return ErrOutOfBounds
	case CellOverflow:
		return ErrOverflow
	}
	return nil
}

// Error describes a failed binning pass. Once a pass returns an Error, none
// of the CellList's arrays should be used until the next successful pass.
type Error struct {
	Kind ErrorKind

	// Particle is the offending particle for NonFiniteCoordinate and
	// ParticleOutOfBounds, -1 otherwise.
	Particle int
	// Coords and Cell are the unwrapped cell coordinates and linear id that
	// an out-of-bounds particle mapped to.
	Coords [3]int
	Cell   int

	// Nmax, MaxOccupancy and Overflowed describe a CellOverflow: the
	// planned capacity, the largest true occupancy, and the number of
	// cells over capacity.
	Nmax, MaxOccupancy, Overflowed int
}

func (e *Error) Error() string {
	switch e.Kind {
	case NonFiniteCoordinate:
		return fmt.Sprintf("Particle %d has a non-finite position.", e.Particle)
	case ParticleOutOfBounds:
		return fmt.Sprintf(
			"Particle %d is no longer in the simulation box (cell "+
				"coordinates %v).", e.Particle, e.Coords,
		)
	case CellOverflow:
		return fmt.Sprintf(
			"Cell list overflowed: %d cells hold more than %d particles, "+
				"the fullest holds %d.", e.Overflowed, e.Nmax, e.MaxOccupancy,
		)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Kind.sentinel() }
