/*package render produces diagnostics of how particles are spread over the
cells of a cell list: occupancy histograms, pyplot scripts plotting them,
and heat map images of single cell layers.
*/
package render

import (
	"fmt"
)

// Summary describes the occupancy of every cell after one pass.
type Summary struct {
	Cells, Particles int
	Nmax             int
	// Max is the largest true occupancy, which may exceed Nmax.
	Max        int
	Empty      int
	Overflowed int
	Mean       float64
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"%d particles in %d cells: mean %.3g, max %d of %d, "+
			"%d empty, %d overflowed",
		s.Particles, s.Cells, s.Mean, s.Max, s.Nmax, s.Empty, s.Overflowed,
	)
}

// Summarize returns the Summary of a per-cell occupancy array.
func Summarize(sizes []uint32, nmax int) Summary {
	s := Summary{Cells: len(sizes), Nmax: nmax}
	for _, size := range sizes {
		n := int(size)
		s.Particles += n
		if n > s.Max {
			s.Max = n
		}
		if n == 0 {
			s.Empty++
		} else if n > nmax {
			s.Overflowed++
		}
	}
	if s.Cells > 0 {
		s.Mean = float64(s.Particles) / float64(s.Cells)
	}
	return s
}

// Histogram returns counts where counts[k] is the number of cells holding
// exactly k particles. It has length max(sizes) + 1.
func Histogram(sizes []uint32) []int {
	max := 0
	for _, size := range sizes {
		if int(size) > max {
			max = int(size)
		}
	}

	counts := make([]int, max+1)
	for _, size := range sizes {
		counts[size]++
	}
	return counts
}

// Layer returns the occupancy of the z-th layer of a grid with dimensions
// dim, indexed as layer[x + y*dim[0]].
func Layer(sizes []uint32, dim [3]int, z int) ([]uint32, error) {
	if z < 0 || z >= dim[2] {
		return nil, fmt.Errorf(
			"Layer %d is outside of a grid with %d layers.", z, dim[2],
		)
	} else if len(sizes) != dim[0]*dim[1]*dim[2] {
		return nil, fmt.Errorf(
			"Occupancy array has %d cells, but dimensions %v need %d.",
			len(sizes), dim, dim[0]*dim[1]*dim[2],
		)
	}

	area := dim[0] * dim[1]
	return sizes[z*area : (z+1)*area], nil
}
