package integrator

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/phil-mansfield/cells"
)

// Config controls a Driver run.
type Config struct {
	// StepSize is the largest displacement per axis per step.
	StepSize float64
	// BoxScale multiplies the box width every step. 1 leaves it alone.
	BoxScale float64
	// SortInterval is the number of steps between cell-order sorts. 0
	// disables sorting.
	SortInterval int
	Seed         int64
}

// Driver advances a Store and keeps a CellList in sync with it.
type Driver struct {
	Store *Store
	Cells *cells.CellList

	con  Config
	gen  *rand.Rand
	step uint64
	log  bool
}

// NewDriver returns a driver for the given store and the cell list built
// over it. The cell list is computed once, at step 0.
func NewDriver(s *Store, cl *cells.CellList, con Config) (*Driver, error) {
	if !(con.BoxScale > 0) {
		return nil, fmt.Errorf("BoxScale must be positive, but is %g.", con.BoxScale)
	} else if con.StepSize < 0 {
		return nil, fmt.Errorf("StepSize must be non-negative, but is %g.", con.StepSize)
	} else if con.SortInterval < 0 {
		return nil, fmt.Errorf(
			"SortInterval must be non-negative, but is %d.", con.SortInterval,
		)
	}

	d := &Driver{
		Store: s, Cells: cl, con: con, gen: rand.New(rand.NewSource(con.Seed)),
	}
	if err := cl.Compute(0); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) Log(flag bool) { d.log = flag }

// CurrentStep returns the number of completed steps.
func (d *Driver) CurrentStep() uint64 { return d.step }

// Run performs the given number of steps. It stops at the first step whose
// cell list fails and returns that error; the cell list is invalid after.
func (d *Driver) Run(steps int) error {
	for i := 0; i < steps; i++ {
		if err := d.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// Advance performs a single step: move, rescale, sort, then rebin.
func (d *Driver) Advance() error {
	next := d.step + 1

	d.Store.Step(d.gen, d.con.StepSize)

	if d.con.BoxScale != 1 {
		if err := d.Store.Rescale(d.con.BoxScale); err != nil {
			return err
		}
		d.Cells.NotifyBoxChanged()
	}

	if d.con.SortInterval > 0 && next%uint64(d.con.SortInterval) == 0 {
		d.Store.SortByCell(d.Cells)
		d.Cells.NotifyParticlesSorted()
		if d.log {
			log.Printf("Sorted %d particles on step %d.", d.Store.p.N(), next)
		}
	}

	if err := d.Cells.Compute(next); err != nil {
		return fmt.Errorf("Cell list failed on step %d: %w", next, err)
	}
	d.step = next
	return nil
}
