package cells

import (
	"fmt"
	"math"
	"runtime"
	"strings"
)

// Backend selects how a binning pass is executed.
type Backend uint8

const (
	// Serial bins particles in order on the calling goroutine.
	Serial Backend = iota
	// Parallel splits the particles over Workers goroutines. Slot order
	// inside a cell is not reproducible.
	Parallel
	EndBackend
)

var backendNames = [...]string{"Serial", "Parallel"}

func (b Backend) String() string {
	if b >= EndBackend {
		return fmt.Sprintf("Backend(%d)", uint8(b))
	}
	return backendNames[b]
}

// ParseBackend returns the Backend with the given name, ignoring case.
func ParseBackend(s string) (Backend, error) {
	for b := Backend(0); b < EndBackend; b++ {
		if strings.EqualFold(b.String(), s) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("Unrecognized backend '%s'.", s)
}

// Params are the rarely-changed settings of a CellList. Changing any of them
// forces a full reinitialization.
type Params struct {
	// NominalWidth is the target cell width. Cells are never narrower.
	NominalWidth float64
	// Radius is the neighbor shell, in cells, of the adjacency table.
	Radius int
	// MaxCells bounds the total number of cells.
	MaxCells int
	// ComputeTDB enables the type/diameter/body payload.
	ComputeTDB bool
	// FlagKind selects what the flag of every XYZF entry carries.
	FlagKind FlagKind

	Backend Backend
	Workers int
}

// DefaultParams returns unit-width cells, a radius of one cell, an
// effectively unbounded cell budget, index flags and serial binning.
func DefaultParams() Params {
	return Params{
		NominalWidth: 1,
		Radius:       1,
		MaxCells:     math.MaxInt32,
		FlagKind:     FlagIndex,
		Backend:      Serial,
		Workers:      runtime.NumCPU(),
	}
}

// Validate returns an error if the parameters cannot be used to build a grid.
func (p *Params) Validate() error {
	switch {
	case !(p.NominalWidth > 0) || math.IsInf(p.NominalWidth, 0):
		return fmt.Errorf(
			"NominalWidth must be positive and finite, but is %g.",
			p.NominalWidth,
		)
	case p.Radius < 0:
		return fmt.Errorf("Radius must be non-negative, but is %d.", p.Radius)
	case p.MaxCells < 1:
		return fmt.Errorf("MaxCells must be positive, but is %d.", p.MaxCells)
	case p.FlagKind >= EndFlagKind:
		return fmt.Errorf("Unrecognized flag kind %d.", p.FlagKind)
	case p.Backend >= EndBackend:
		return fmt.Errorf("Unrecognized backend %d.", p.Backend)
	case p.Backend == Parallel && p.Workers < 1:
		return fmt.Errorf(
			"Parallel binning needs at least one worker, but %d were "+
				"requested.", p.Workers,
		)
	}
	return nil
}
