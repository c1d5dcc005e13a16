package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/cells"
	"github.com/phil-mansfield/cells/geom"
)

type testSystem struct {
	box geom.Box
	p   *cells.Particles
}

func (s *testSystem) Box() geom.Box               { return s.box }
func (s *testSystem) Particles() *cells.Particles { return s.p }

// gather returns every sample in reg keyed by name and label values.
func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	mfs, err := reg.Gather()
	require.NoError(t, err)

	out := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, l := range m.GetLabel() {
				key += fmt.Sprintf("{%s=%s}", l.GetName(), l.GetValue())
			}

			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestObserveBin(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)

	st := cells.BinStats{Particles: 10, Cells: 8, Nmax: 32, MaxOccupancy: 4, Empty: 3}
	o.ObserveBin(st, time.Millisecond, nil)
	o.ObserveBin(st, time.Millisecond, &cells.Error{Kind: cells.CellOverflow})
	o.ObserveBin(st, time.Millisecond, fmt.Errorf("Something else."))
	o.ObserveRebuild(cells.NeedFullReinit)
	o.ObserveRebuild(cells.NeedRebin)
	o.ObserveRebuild(cells.NeedRebin)

	m := gather(t, reg)
	assert.Equal(t, 3.0, m["cells_bin_passes_total"])
	assert.Equal(t, 3.0, m["cells_bin_duration_seconds"])
	assert.Equal(t, 1.0, m["cells_bin_failures_total{kind=CellOverflow}"])
	assert.Equal(t, 1.0, m["cells_bin_failures_total{kind=Other}"])
	assert.Equal(t, 1.0, m["cells_rebuilds_total{state=NeedFullReinit}"])
	assert.Equal(t, 2.0, m["cells_rebuilds_total{state=NeedRebin}"])
	assert.Equal(t, 10.0, m["cells_particles"])
	assert.Equal(t, 8.0, m["cells_count"])
	assert.Equal(t, 32.0, m["cells_capacity"])
	assert.Equal(t, 4.0, m["cells_max_occupancy"])
	assert.Equal(t, 3.0, m["cells_empty"])
}

func TestObserverOnCellList(t *testing.T) {
	reg := prometheus.NewRegistry()
	sys := &testSystem{
		box: geom.NewBox(3, 3),
		p:   &cells.Particles{Xs: []geom.Vec{{0.5, 0.5, 0.5}, {2.5, 2.5, 2.5}}},
	}
	cl, err := cells.New(sys, cells.DefaultParams())
	require.NoError(t, err)
	cl.SetObserver(NewObserver(reg))

	require.NoError(t, cl.Compute(0))
	require.NoError(t, cl.Compute(1))
	cl.NotifyParticlesSorted()
	require.NoError(t, cl.Compute(1))

	sys.p.Xs[1][0] = 7
	cl.NotifyBoxChanged()
	require.Error(t, cl.Compute(2))

	m := gather(t, reg)
	assert.Equal(t, 4.0, m["cells_bin_passes_total"])
	assert.Equal(t, 1.0, m["cells_rebuilds_total{state=NeedFullReinit}"])
	assert.Equal(t, 1.0, m["cells_rebuilds_total{state=NeedRebin}"])
	assert.Equal(t, 1.0, m["cells_rebuilds_total{state=NeedWidthOnly}"])
	assert.Equal(t, 1.0, m["cells_bin_failures_total{kind=ParticleOutOfBounds}"])
	assert.Equal(t, 27.0, m["cells_count"])
}

func TestDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewObserver(reg)
	assert.Panics(t, func() { NewObserver(reg) })
}
