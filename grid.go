package cells

import (
	"fmt"
	"math"
	"sort"

	"github.com/phil-mansfield/cells/geom"
)

// twoDLayers is the z cell count of every 2D grid: the particle layer plus
// one periodic image above and below.
const twoDLayers = 3

// ComputeDimensions returns the per-axis cell counts for box given the
// nominal cell width and the total cell budget. Used axes get
// floor(length / width) cells, scaled down uniformly if the total would
// exceed maxCells. A 2D box always has exactly three cells along z. Every
// axis has at least one cell.
func ComputeDimensions(
	box *geom.Box, width float64, maxCells int,
) (dim [3]int, err error) {
	budget := float64(maxCells)

	d := box.Dims
	for i := 0; i < d; i++ {
		n := math.Floor(box.Len(i) / width)
		if n > budget {
			n = budget
		}
		dim[i] = int(n)
	}
	if d == 2 {
		dim[2] = twoDLayers
	}

	// Products are taken in float64: three axes of a huge box overflow int.
	if n := cellCount(dim); n > budget {
		scale := math.Pow(budget/n, 1/float64(d))
		for i := 0; i < d; i++ {
			dim[i] = int(float64(dim[i]) * scale)
		}
	}

	for i := 0; i < d; i++ {
		if dim[i] < 1 {
			dim[i] = 1
		}
	}

	// Rounding in Pow can leave us one cell over budget.
	for cellCount(dim) > budget {
		big := 0
		for i := 1; i < d; i++ {
			if dim[i] > dim[big] {
				big = i
			}
		}
		if dim[big] == 1 {
			return dim, fmt.Errorf(
				"%w: a %dD grid needs at least %.0f cells, but MaxCells is %d",
				ErrCellBudget, d, cellCount(dim), maxCells,
			)
		}
		dim[big]--
	}

	return dim, nil
}

func cellCount(dim [3]int) float64 {
	return float64(dim[0]) * float64(dim[1]) * float64(dim[2])
}

// EstimateNmax returns the per-cell capacity for n particles spread over
// numCells cells: ten percent above the mean occupancy, rounded up past the
// next multiple of 32.
func EstimateNmax(n, numCells int) int {
	est := int(math.Ceil(float64(n) * 1.1 / float64(numCells)))
	return est + 32 - (est & 31)
}

// AdjacencyWidth returns the number of entries in each cell's adjacency
// list for a neighbor radius of r cells.
func AdjacencyWidth(r int) int {
	w := 2*r + 1
	return w * w * w
}

// BuildAdjacency writes the periodic neighbor list of every cell of ci into
// adj and returns the indexer for it. adj must have room for
// AdjacencyWidth(r) * ci.Len() entries. Each list includes the cell itself
// and is sorted. When 2r+1 exceeds an axis length the list contains
// repeated ids; they are kept.
func BuildAdjacency(ci geom.Index3D, r int, adj []int) geom.Index2D {
	ai := geom.NewIndex2D(AdjacencyWidth(r), ci.Len())

	for k := 0; k < ci.D; k++ {
		for j := 0; j < ci.H; j++ {
			for i := 0; i < ci.W; i++ {
				cur := ci.Idx(i, j, k)
				offset := 0

				for nk := k - r; nk <= k+r; nk++ {
					for nj := j - r; nj <= j+r; nj++ {
						for ni := i - r; ni <= i+r; ni++ {
							wi, wj, wk := ci.Wrap(ni, nj, nk)
							adj[ai.Idx(offset, cur)] = ci.Idx(wi, wj, wk)
							offset++
						}
					}
				}

				sort.Ints(adj[ai.Idx(0, cur):ai.Idx(offset, cur)])
			}
		}
	}

	return ai
}
