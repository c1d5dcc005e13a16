package cells

import (
	"math"
	"sync/atomic"

	"github.com/phil-mansfield/cells/geom"
)

// binner holds everything a single binning pass reads and writes. It is
// rebuilt for every pass and shared read-only between workers, except for
// the arrays, which workers write through atomically claimed slots.
type binner struct {
	lo, hi, scale geom.Vec
	ci            geom.Index3D
	cli           geom.Index2D
	nmax          int

	flagKind FlagKind
	tdb      bool
	p        *Particles

	sizes []uint32
	xyzf  []XYZF
	tdbs  []TDB
}

// workerResult is what one worker reports back once its strided range has
// been scanned.
type workerResult struct {
	err      *Error
	overflow bool
}

// locate returns the cell that position x falls in. Coordinates on the
// upper face of the box wrap to the first cell along that axis.
func locate(
	x *geom.Vec, lo, hi, scale *geom.Vec, ci geom.Index3D,
) (c [3]int, cell int, ok bool) {
	dim := ci.Dim()
	for i := 0; i < 3; i++ {
		c[i] = int(math.Floor((x[i] - lo[i]) * scale[i]))
		if c[i] == dim[i] && x[i] <= hi[i] {
			c[i] = 0
		}
	}
	cell, ok = ci.IdxCheck(c[0], c[1], c[2])
	if !ok {
		cell = ci.Idx(c[0], c[1], c[2])
	}
	return c, cell, ok
}

// cellOf returns the cell of particle n or the fatal error it causes.
func (b *binner) cellOf(n int) (int, *Error) {
	x := &b.p.Xs[n]
	if !x.Finite() {
		return -1, &Error{Kind: NonFiniteCoordinate, Particle: n, Cell: -1}
	}

	c, cell, ok := locate(x, &b.lo, &b.hi, &b.scale, b.ci)
	if !ok {
		return -1, &Error{
			Kind: ParticleOutOfBounds, Particle: n, Coords: c, Cell: cell,
		}
	}
	return cell, nil
}

func (b *binner) flag(n int) Flag {
	if b.flagKind == FlagCharge {
		return ChargeFlag(b.p.Charges[n])
	}
	return IndexFlag(n)
}

// store writes particle n into the given slot of cell and returns false if
// the slot is past capacity.
func (b *binner) store(n, cell, slot int) bool {
	if slot >= b.nmax {
		return false
	}

	x := &b.p.Xs[n]
	idx := b.cli.Idx(slot, cell)
	b.xyzf[idx] = XYZF{x[0], x[1], x[2], b.flag(n)}
	if b.tdb {
		b.tdbs[idx] = TDB{b.p.Types[n], b.p.Diameters[n], b.p.Bodies[n]}
	}
	return true
}

func (b *binner) clear() {
	for i := range b.sizes {
		b.sizes[i] = 0
	}
}

// serial bins every particle in order. Non-finite and out-of-bounds
// particles stop the scan; overflow does not.
func (b *binner) serial() *Error {
	b.clear()

	overflow := false
	for n := 0; n < b.p.N(); n++ {
		cell, err := b.cellOf(n)
		if err != nil {
			return err
		}

		if !b.store(n, cell, int(b.sizes[cell])) {
			overflow = true
		}
		b.sizes[cell]++
	}

	if overflow {
		return b.overflowError()
	}
	return nil
}

// parallel bins the particles with the given number of workers. Worker id
// handles particles id, id + workers, id + 2*workers, ....
func (b *binner) parallel(workers int) *Error {
	b.clear()

	out := make(chan workerResult, workers)
	for id := 0; id < workers-1; id++ {
		go b.chanBin(id, workers, out)
	}
	b.chanBin(workers-1, workers, out)

	var first *Error
	overflow := false
	for i := 0; i < workers; i++ {
		res := <-out
		overflow = overflow || res.overflow
		if res.err != nil && (first == nil || res.err.Particle < first.Particle) {
			first = res.err
		}
	}

	if first != nil {
		return first
	}
	if overflow {
		return b.overflowError()
	}
	return nil
}

func (b *binner) chanBin(low, jump int, out chan<- workerResult) {
	res := workerResult{}
	for n := low; n < b.p.N(); n += jump {
		cell, err := b.cellOf(n)
		if err != nil {
			res.err = err
			break
		}

		slot := int(atomic.AddUint32(&b.sizes[cell], 1)) - 1
		if !b.store(n, cell, slot) {
			res.overflow = true
		}
	}
	out <- res
}

func (b *binner) overflowError() *Error {
	err := &Error{Kind: CellOverflow, Particle: -1, Cell: -1, Nmax: b.nmax}
	for cell, size := range b.sizes {
		if int(size) > b.nmax {
			err.Overflowed++
		}
		if int(size) > err.MaxOccupancy {
			err.MaxOccupancy = int(size)
			err.Cell = cell
		}
	}
	return err
}
