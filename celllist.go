package cells

import (
	"fmt"
	"log"
	"time"

	"github.com/phil-mansfield/cells/geom"
)

// State is the amount of work the next Compute call has to do before it can
// bin.
type State int

const (
	Clean State = iota
	NeedFullReinit
	NeedWidthOnly
	NeedRebin
)

func (s State) String() string {
	switch s {
	case Clean:
		return "Clean"
	case NeedFullReinit:
		return "NeedFullReinit"
	case NeedWidthOnly:
		return "NeedWidthOnly"
	case NeedRebin:
		return "NeedRebin"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// BinStats summarizes the occupancy found by the last binning pass.
type BinStats struct {
	Particles, Cells, Nmax int
	MaxOccupancy, Empty    int
}

// Stats counts the work a CellList has done since it was created.
type Stats struct {
	FullRebuilds, WidthUpdates int
	BinPasses, Failures        int
	Last                       BinStats
}

// Observer is told about every rebuild and every binning pass.
type Observer interface {
	ObserveRebuild(s State)
	ObserveBin(st BinStats, dt time.Duration, err error)
}

// CellList is the grid, its adjacency table and the per-cell particle
// arrays. It is driven by a single goroutine; the arrays it returns are
// read-only to everyone else and are valid until the next Compute call.
type CellList struct {
	sys    System
	params Params
	sched  Scheduler
	obs    Observer

	dim   [3]int
	width geom.Vec
	nmax  int

	ci        geom.Index3D
	cli, adji geom.Index2D

	sizes []uint32
	xyzf  []XYZF
	tdb   []TDB
	adj   []int

	paramsChanged, boxChanged, particlesSorted, overflowed bool

	valid bool
	log   bool
	stats Stats
}

// New returns a CellList over sys. Nothing is allocated until the first
// call to Compute.
func New(sys System, p Params) (*CellList, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cl := &CellList{
		sys:    sys,
		params: p,
		sched:  &OncePerStep{},
		nmax:   32,

		paramsChanged: true,
	}
	return cl, nil
}

// Log turns logging of rebuilds on or off.
func (cl *CellList) Log(flag bool) { cl.log = flag }

// SetScheduler replaces the policy used on steps with nothing to rebuild.
func (cl *CellList) SetScheduler(s Scheduler) { cl.sched = s }

// SetObserver registers o to be told about rebuilds and passes.
func (cl *CellList) SetObserver(o Observer) { cl.obs = o }

///////////////////////
// Parameter setters //
///////////////////////

func (cl *CellList) SetNominalWidth(w float64) {
	cl.params.NominalWidth = w
	cl.paramsChanged = true
}

func (cl *CellList) SetRadius(r int) {
	cl.params.Radius = r
	cl.paramsChanged = true
}

func (cl *CellList) SetMaxCells(n int) {
	cl.params.MaxCells = n
	cl.paramsChanged = true
}

func (cl *CellList) SetComputeTDB(flag bool) {
	cl.params.ComputeTDB = flag
	cl.paramsChanged = true
}

// SetFlagCharge makes the flag of every binned particle carry its charge.
func (cl *CellList) SetFlagCharge() {
	cl.params.FlagKind = FlagCharge
	cl.paramsChanged = true
}

// SetFlagIndex makes the flag of every binned particle carry its index.
func (cl *CellList) SetFlagIndex() {
	cl.params.FlagKind = FlagIndex
	cl.paramsChanged = true
}

func (cl *CellList) SetBackend(b Backend, workers int) {
	cl.params.Backend = b
	cl.params.Workers = workers
	cl.paramsChanged = true
}

// Params returns the current parameters.
func (cl *CellList) Params() Params { return cl.params }

///////////////////
// Notifications //
///////////////////

// NotifyBoxChanged must be called by the driver whenever the box bounds
// change.
func (cl *CellList) NotifyBoxChanged() { cl.boxChanged = true }

// NotifyParticlesSorted must be called by the driver whenever particle
// storage is reordered.
func (cl *CellList) NotifyParticlesSorted() { cl.particlesSorted = true }

//////////////////////
// State controller //
//////////////////////

// Plan returns the State the next call to Compute will resolve.
func (cl *CellList) Plan() State {
	if cl.paramsChanged {
		return NeedFullReinit
	}

	if cl.boxChanged {
		box := cl.sys.Box()
		dim, err := ComputeDimensions(
			&box, cl.params.NominalWidth, cl.params.MaxCells,
		)
		if err != nil || dim != cl.dim {
			return NeedFullReinit
		}
		return NeedWidthOnly
	}

	if cl.particlesSorted {
		return NeedRebin
	}
	return Clean
}

// Compute brings the grid up to date for the given step. Any pending
// rebuild is performed and forces a binning pass, as does a failed previous
// pass; otherwise the Scheduler decides whether to rebin. A non-nil error
// means the arrays must not be used.
func (cl *CellList) Compute(step uint64) error {
	state := cl.Plan()

	var err error
	switch state {
	case NeedFullReinit:
		err = cl.initializeAll()
	case NeedWidthOnly:
		err = cl.initializeWidth()
	}
	if err != nil {
		cl.valid = false
		cl.stats.Failures++
		return err
	}

	switch state {
	case NeedFullReinit:
		cl.stats.FullRebuilds++
	case NeedWidthOnly:
		cl.stats.WidthUpdates++
	}
	if state != Clean && cl.obs != nil {
		cl.obs.ObserveRebuild(state)
	}

	cl.paramsChanged = false
	cl.boxChanged = false
	cl.particlesSorted = false

	// A failed pass leaves nothing to reuse, so it is always retried.
	due := cl.sched.ShouldCompute(step)
	if !due && state == Clean && cl.valid {
		return nil
	}
	return cl.computeCellList()
}

func (cl *CellList) initializeAll() error {
	if err := cl.params.Validate(); err != nil {
		return err
	}
	if err := cl.initializeWidth(); err != nil {
		return err
	}
	cl.initializeMemory()
	return nil
}

// initializeWidth recomputes the dimensions and the cell width from the
// current box.
func (cl *CellList) initializeWidth() error {
	box := cl.sys.Box()
	if err := box.Validate(); err != nil {
		return err
	}

	dim, err := ComputeDimensions(
		&box, cl.params.NominalWidth, cl.params.MaxCells,
	)
	if err != nil {
		return err
	}

	cl.dim = dim
	for i := 0; i < 3; i++ {
		cl.width[i] = box.Len(i) / float64(dim[i])
	}

	if cl.log {
		log.Printf("Cell width set to %.4g x %.4g x %.4g.",
			cl.width[0], cl.width[1], cl.width[2])
	}
	return nil
}

// initializeMemory plans Nmax, replaces every array and rebuilds the
// adjacency table. The dimensions must already be set.
func (cl *CellList) initializeMemory() {
	cl.ci = geom.NewIndex3D(cl.dim)
	numCells := cl.ci.Len()

	cl.nmax = EstimateNmax(cl.sys.Particles().N(), numCells)
	cl.cli = geom.NewIndex2D(cl.nmax, numCells)

	// Arrays are replaced, never resized: slices handed out before a
	// rebuild keep pointing at the old data.
	cl.sizes = make([]uint32, numCells)
	cl.xyzf = make([]XYZF, cl.cli.Len())
	if cl.params.ComputeTDB {
		cl.tdb = make([]TDB, cl.cli.Len())
	} else {
		cl.tdb = nil
	}
	cl.adj = make([]int, AdjacencyWidth(cl.params.Radius)*numCells)

	cl.adji = BuildAdjacency(cl.ci, cl.params.Radius, cl.adj)

	if cl.log {
		log.Printf(
			"Cell list reinitialized: dim = %v, %d cells, Nmax = %d, "+
				"%d neighbors per cell.",
			cl.dim, numCells, cl.nmax, cl.adji.W,
		)
	}
}

func (cl *CellList) computeCellList() error {
	t0 := time.Now()
	cl.overflowed = false
	cl.valid = false

	p := cl.sys.Particles()
	if err := p.check(&cl.params); err != nil {
		cl.stats.Failures++
		return err
	}

	box := cl.sys.Box()
	b := &binner{
		lo:       box.Lo,
		hi:       box.Hi,
		ci:       cl.ci,
		cli:      cl.cli,
		nmax:     cl.nmax,
		flagKind: cl.params.FlagKind,
		tdb:      cl.params.ComputeTDB,
		p:        p,
		sizes:    cl.sizes,
		xyzf:     cl.xyzf,
		tdbs:     cl.tdb,
	}
	for i := 0; i < 3; i++ {
		b.scale[i] = 1 / cl.width[i]
	}

	var binErr *Error
	if cl.params.Backend == Parallel && cl.params.Workers > 1 {
		binErr = b.parallel(cl.params.Workers)
	} else {
		binErr = b.serial()
	}

	cl.stats.BinPasses++
	cl.stats.Last = cl.binStats(p.N())

	var err error
	if binErr != nil {
		cl.overflowed = binErr.Kind == CellOverflow
		cl.stats.Failures++
		err = binErr
		if cl.log {
			log.Printf("Cell list pass failed: %s", binErr.Error())
		}
	} else {
		cl.valid = true
	}

	if cl.obs != nil {
		cl.obs.ObserveBin(cl.stats.Last, time.Since(t0), err)
	}
	return err
}

func (cl *CellList) binStats(n int) BinStats {
	st := BinStats{Particles: n, Cells: cl.ci.Len(), Nmax: cl.nmax}
	for _, size := range cl.sizes {
		if size == 0 {
			st.Empty++
		}
		if int(size) > st.MaxOccupancy {
			st.MaxOccupancy = int(size)
		}
	}
	return st
}

///////////////
// Accessors //
///////////////

// Valid returns true if the last binning pass succeeded.
func (cl *CellList) Valid() bool { return cl.valid }

// Overflowed returns true if the last binning pass overflowed a cell.
func (cl *CellList) Overflowed() bool { return cl.overflowed }

func (cl *CellList) Dim() [3]int { return cl.dim }
func (cl *CellList) Width() geom.Vec { return cl.width }
func (cl *CellList) NumCells() int { return cl.ci.Len() }
func (cl *CellList) Nmax() int { return cl.nmax }
func (cl *CellList) Stats() Stats { return cl.stats }
func (cl *CellList) Box() geom.Box { return cl.sys.Box() }
func (cl *CellList) Radius() int { return cl.params.Radius }
func (cl *CellList) FlagKind() FlagKind { return cl.params.FlagKind }

// CellIndexer maps cell coordinates to cell ids.
func (cl *CellList) CellIndexer() geom.Index3D { return cl.ci }

// SlotIndexer maps (slot, cell) to an index into XYZF and TDB.
func (cl *CellList) SlotIndexer() geom.Index2D { return cl.cli }

// AdjIndexer maps (offset, cell) to an index into Adj.
func (cl *CellList) AdjIndexer() geom.Index2D { return cl.adji }

// CellSizes returns the true occupancy of every cell. After an overflow some
// entries exceed Nmax.
func (cl *CellList) CellSizes() []uint32 { return cl.sizes }

func (cl *CellList) XYZF() []XYZF { return cl.xyzf }

// TDB returns nil unless type/diameter/body binning is enabled.
func (cl *CellList) TDB() []TDB { return cl.tdb }

func (cl *CellList) Adj() []int { return cl.adj }

// Members returns the binned entries of a cell.
func (cl *CellList) Members(cell int) []XYZF {
	n := int(cl.sizes[cell])
	if n > cl.nmax {
		n = cl.nmax
	}
	start := cl.cli.Idx(0, cell)
	return cl.xyzf[start : start+n]
}

// Neighbors returns the adjacency list of a cell.
func (cl *CellList) Neighbors(cell int) []int {
	start := cl.adji.Idx(0, cell)
	return cl.adj[start : start+cl.adji.W]
}

// CellOf returns the cell that x currently bins into and false if x is
// outside the box or not finite.
func (cl *CellList) CellOf(x geom.Vec) (int, bool) {
	if !x.Finite() || cl.ci.Len() == 0 {
		return -1, false
	}
	box := cl.sys.Box()
	var scale geom.Vec
	for i := 0; i < 3; i++ {
		scale[i] = 1 / cl.width[i]
	}
	_, cell, ok := locate(&x, &box.Lo, &box.Hi, &scale, cl.ci)
	return cell, ok
}
