package render

import (
	"fmt"

	plt "github.com/phil-mansfield/pyplot"
)

// PlotHistogram queues a pyplot figure of an occupancy histogram with a
// vertical line at the capacity nmax, saved to fname. Nothing is drawn
// until plt.Execute is called.
func PlotHistogram(counts []int, nmax int, title, fname string) {
	occ := make([]float64, len(counts))
	cells := make([]float64, len(counts))
	peak := 1.0
	for k, n := range counts {
		occ[k], cells[k] = float64(k), float64(n)
		if cells[k] > peak {
			peak = cells[k]
		}
	}

	plt.Figure()
	plt.Plot(occ, cells, "ok")
	plt.Plot(occ, cells, "k", plt.LW(2))
	plt.Plot(
		[]float64{float64(nmax), float64(nmax)}, []float64{0, peak},
		"r", plt.LW(2),
	)

	plt.Title(title)
	plt.XLabel("Particles per cell", plt.FontSize(16))
	plt.YLabel("Cells", plt.FontSize(16))
	plt.XLim(0, float64(maxInt(len(counts)-1, nmax)+1))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}

// PlotSummary is PlotHistogram with a title generated from the Summary of
// sizes.
func PlotSummary(sizes []uint32, nmax int, step uint64, fname string) {
	s := Summarize(sizes, nmax)
	title := fmt.Sprintf(
		"Step %d: %d cells, mean occupancy %.3g", step, s.Cells, s.Mean,
	)
	PlotHistogram(Histogram(sizes), nmax, title, fname)
}

func maxInt(x, y int) int {
	if x > y {
		return x
	}
	return y
}
