package geom

// Index3D provides an interface for reasoning over a 1D slice as if it were a
// 3D grid of cells. x varies fastest.
type Index3D struct {
	W, H, D int
	area int
}

// NewIndex3D returns a new Index3D instance for a grid with the given
// per-axis cell counts.
func NewIndex3D(dim [3]int) Index3D {
	return Index3D{W: dim[0], H: dim[1], D: dim[2], area: dim[0] * dim[1]}
}

// Dim returns the per-axis cell counts of the grid.
func (g Index3D) Dim() [3]int { return [3]int{g.W, g.H, g.D} }

// Len returns the number of cells in the grid.
func (g Index3D) Len() int { return g.area * g.D }

// Idx returns the grid index corresponding to a set of coordinates.
func (g Index3D) Idx(x, y, z int) int {
	return x + y*g.W + z*g.area
}

// IdxCheck returns an index and true if the given coordinates are valid and
// false otherwise.
func (g Index3D) IdxCheck(x, y, z int) (idx int, ok bool) {
	if !g.BoundsCheck(x, y, z) {
		return -1, false
	}
	return g.Idx(x, y, z), true
}

// BoundsCheck returns true if the given coordinates are within the grid and
// false otherwise.
func (g Index3D) BoundsCheck(x, y, z int) bool {
	return (0 <= x && 0 <= y && 0 <= z) &&
		(x < g.W && y < g.H && z < g.D)
}

// Coords returns the x, y, z coordinates of a cell from its grid index.
func (g Index3D) Coords(idx int) (x, y, z int) {
	x = idx % g.W
	y = (idx % g.area) / g.W
	z = idx / g.area
	return x, y, z
}

// Wrap maps an arbitrary integer coordinate onto the periodic grid.
func (g Index3D) Wrap(x, y, z int) (int, int, int) {
	return PMod(x, g.W), PMod(y, g.H), PMod(z, g.D)
}

// Index2D addresses a row-major W x H table stored in a 1D slice. The
// cell list uses it with i as the slot (or neighbor offset) and j as the cell.
type Index2D struct {
	W, H int
}

// NewIndex2D returns a new Index2D instance.
func NewIndex2D(w, h int) Index2D { return Index2D{w, h} }

// Idx returns the slice index of element (i, j).
func (g Index2D) Idx(i, j int) int { return i + j*g.W }

// Len returns the number of elements in the table.
func (g Index2D) Len() int { return g.W * g.H }

// PMod computes the positive modulo x % y.
func PMod(x, y int) int {
	m := x % y
	if m < 0 {
		m += y
	}
	return m
}
