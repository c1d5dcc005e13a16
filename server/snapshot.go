package server

import (
	"sync"

	"github.com/phil-mansfield/cells"
	"github.com/phil-mansfield/cells/geom"
)

// Snapshot is a copy of a CellList taken between steps. It stays valid
// while the CellList moves on.
type Snapshot struct {
	Step  uint64
	Valid bool

	Dim   [3]int
	Width geom.Vec
	Nmax  int
	Stats cells.Stats

	ci    geom.Index3D
	cli   geom.Index2D
	adji  geom.Index2D
	sizes []uint32
	xyzf  []cells.XYZF
	adj   []int
}

// Publisher hands the latest Snapshot from the goroutine driving a
// CellList to HTTP handlers.
type Publisher struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// Publish copies the current contents of cl. It must be called from the
// goroutine that calls cl.Compute.
func (p *Publisher) Publish(cl *cells.CellList, step uint64) {
	snap := &Snapshot{
		Step:  step,
		Valid: cl.Valid(),
		Dim:   cl.Dim(),
		Width: cl.Width(),
		Nmax:  cl.Nmax(),
		Stats: cl.Stats(),

		ci:    cl.CellIndexer(),
		cli:   cl.SlotIndexer(),
		adji:  cl.AdjIndexer(),
		sizes: append([]uint32(nil), cl.CellSizes()...),
		xyzf:  append([]cells.XYZF(nil), cl.XYZF()...),
		adj:   append([]int(nil), cl.Adj()...),
	}

	p.mu.Lock()
	p.snap = snap
	p.mu.Unlock()
}

// Latest returns the most recent Snapshot, or nil if nothing has been
// published.
func (p *Publisher) Latest() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// NumCells returns the number of cells in the snapshot.
func (s *Snapshot) NumCells() int { return s.ci.Len() }

// Size returns the true occupancy of a cell.
func (s *Snapshot) Size(cell int) int { return int(s.sizes[cell]) }

// Members returns the entries binned into a cell.
func (s *Snapshot) Members(cell int) []cells.XYZF {
	n := int(s.sizes[cell])
	if n > s.Nmax {
		n = s.Nmax
	}
	start := s.cli.Idx(0, cell)
	return s.xyzf[start : start+n]
}

// Neighbors returns the adjacency list of a cell.
func (s *Snapshot) Neighbors(cell int) []int {
	start := s.adji.Idx(0, cell)
	return s.adj[start : start+s.adji.W]
}

// Coords returns the grid coordinates of a cell.
func (s *Snapshot) Coords(cell int) [3]int {
	x, y, z := s.ci.Coords(cell)
	return [3]int{x, y, z}
}
