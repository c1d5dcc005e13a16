/*package metrics exports the activity of a cells.CellList as Prometheus
metrics. Labels are bounded: states and error kinds only.
*/
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phil-mansfield/cells"
)

// Observer implements cells.Observer on top of a set of Prometheus
// collectors.
type Observer struct {
	rebuilds    *prometheus.CounterVec
	passes      prometheus.Counter
	failures    *prometheus.CounterVec
	binDuration prometheus.Histogram

	particles    prometheus.Gauge
	cellCount    prometheus.Gauge
	nmax         prometheus.Gauge
	maxOccupancy prometheus.Gauge
	empty        prometheus.Gauge
}

var _ cells.Observer = (*Observer)(nil)

// NewObserver registers the collectors with reg and returns an Observer
// that updates them.
func NewObserver(reg prometheus.Registerer) *Observer {
	f := promauto.With(reg)
	return &Observer{
		rebuilds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cells_rebuilds_total",
			Help: "Grid rebuilds, by resolved state",
		}, []string{"state"}), // Bounded: "NeedFullReinit", "NeedWidthOnly", "NeedRebin"

		passes: f.NewCounter(prometheus.CounterOpts{
			Name: "cells_bin_passes_total",
			Help: "Binning passes, failed or not",
		}),

		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cells_bin_failures_total",
			Help: "Failed binning passes, by error kind",
		}, []string{"kind"}),

		binDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cells_bin_duration_seconds",
			Help:    "Time spent in a binning pass",
			Buckets: []float64{1e-5, 1e-4, 5e-4, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		particles: f.NewGauge(prometheus.GaugeOpts{
			Name: "cells_particles",
			Help: "Particles binned by the last pass",
		}),
		cellCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "cells_count",
			Help: "Number of cells in the grid",
		}),
		nmax: f.NewGauge(prometheus.GaugeOpts{
			Name: "cells_capacity",
			Help: "Planned per-cell capacity (Nmax)",
		}),
		maxOccupancy: f.NewGauge(prometheus.GaugeOpts{
			Name: "cells_max_occupancy",
			Help: "Largest true cell occupancy of the last pass",
		}),
		empty: f.NewGauge(prometheus.GaugeOpts{
			Name: "cells_empty",
			Help: "Empty cells after the last pass",
		}),
	}
}

func (o *Observer) ObserveRebuild(s cells.State) {
	o.rebuilds.WithLabelValues(s.String()).Inc()
}

func (o *Observer) ObserveBin(st cells.BinStats, dt time.Duration, err error) {
	o.passes.Inc()
	o.binDuration.Observe(dt.Seconds())

	o.particles.Set(float64(st.Particles))
	o.cellCount.Set(float64(st.Cells))
	o.nmax.Set(float64(st.Nmax))
	o.maxOccupancy.Set(float64(st.MaxOccupancy))
	o.empty.Set(float64(st.Empty))

	if err != nil {
		o.failures.WithLabelValues(failureKind(err)).Inc()
	}
}

func failureKind(err error) string {
	var cerr *cells.Error
	if errors.As(err, &cerr) {
		return cerr.Kind.String()
	}
	return "Other"
}
