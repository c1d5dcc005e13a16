package cells

import (
	"fmt"

	"github.com/phil-mansfield/cells/geom"
)

// System is the particle and box store that a CellList reads from. It is
// owned by the driver; the CellList never writes to it.
type System interface {
	Box() geom.Box
	Particles() *Particles
}

// Particles holds per-particle arrays. Xs is always read. Charges is read
// only when the flag field carries charges, and Types, Diameters and Bodies
// are read only when type/diameter/body binning is enabled.
type Particles struct {
	Xs        []geom.Vec
	Charges   []float64
	Types     []int
	Diameters []float64
	Bodies    []int
}

// N returns the number of particles.
func (p *Particles) N() int { return len(p.Xs) }

// check returns an error if an array that params requires is too short.
func (p *Particles) check(params *Params) error {
	n := p.N()
	if params.FlagKind == FlagCharge && len(p.Charges) < n {
		return fmt.Errorf(
			"Charge flags requested, but only %d of %d particles have "+
				"charges.", len(p.Charges), n,
		)
	}
	if params.ComputeTDB {
		if len(p.Types) < n || len(p.Diameters) < n || len(p.Bodies) < n {
			return fmt.Errorf(
				"Type/diameter/body binning requested, but the arrays "+
					"have lengths %d, %d, %d for %d particles.",
				len(p.Types), len(p.Diameters), len(p.Bodies), n,
			)
		}
	}
	return nil
}
