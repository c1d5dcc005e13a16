/*package server exposes a running cell list over HTTP for debugging:
Prometheus metrics, a summary of the grid and the contents of single cells.
It reads only published Snapshots, never the live CellList.
*/
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig contains the dependencies of the router.
type RouterConfig struct {
	// Publisher supplies the grid (required).
	Publisher *Publisher
	// Gatherer is served on /metrics. If nil, /metrics is not mounted.
	Gatherer prometheus.Gatherer
	// DisableLogging disables the request logger middleware.
	DisableLogging bool
}

type handlers struct {
	pub *Publisher
}

// NewRouter constructs the router. It starts no goroutines and opens no
// listeners, so it can be passed straight to httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	h := &handlers{cfg.Publisher}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/grid", h.handleGetGrid)
	r.Get("/cells/{id}", h.handleGetCell)

	return r
}

type gridJSON struct {
	Step         uint64     `json:"step"`
	Valid        bool       `json:"valid"`
	Dim          [3]int     `json:"dim"`
	Width        [3]float64 `json:"width"`
	Cells        int        `json:"cells"`
	Nmax         int        `json:"nmax"`
	Particles    int        `json:"particles"`
	MaxOccupancy int        `json:"maxOccupancy"`
	Empty        int        `json:"empty"`
	FullRebuilds int        `json:"fullRebuilds"`
	WidthUpdates int        `json:"widthUpdates"`
	BinPasses    int        `json:"binPasses"`
	Failures     int        `json:"failures"`
}

type memberJSON struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Flag string  `json:"flag"`
}

type cellJSON struct {
	ID        int          `json:"id"`
	Coords    [3]int       `json:"coords"`
	Size      int          `json:"size"`
	Members   []memberJSON `json:"members"`
	Neighbors []int        `json:"neighbors"`
}

func (h *handlers) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	snap := h.pub.Latest()
	if snap == nil {
		writeError(w, "No grid has been published yet", http.StatusServiceUnavailable)
		return
	}

	st := snap.Stats
	writeJSON(w, gridJSON{
		Step:         snap.Step,
		Valid:        snap.Valid,
		Dim:          snap.Dim,
		Width:        snap.Width,
		Cells:        snap.NumCells(),
		Nmax:         snap.Nmax,
		Particles:    st.Last.Particles,
		MaxOccupancy: st.Last.MaxOccupancy,
		Empty:        st.Last.Empty,
		FullRebuilds: st.FullRebuilds,
		WidthUpdates: st.WidthUpdates,
		BinPasses:    st.BinPasses,
		Failures:     st.Failures,
	})
}

func (h *handlers) handleGetCell(w http.ResponseWriter, r *http.Request) {
	snap := h.pub.Latest()
	if snap == nil {
		writeError(w, "No grid has been published yet", http.StatusServiceUnavailable)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Cell id must be an integer", http.StatusBadRequest)
		return
	}
	if id < 0 || id >= snap.NumCells() {
		writeError(w, "Cell id is outside of the grid", http.StatusNotFound)
		return
	}

	members := snap.Members(id)
	out := cellJSON{
		ID:        id,
		Coords:    snap.Coords(id),
		Size:      snap.Size(id),
		Members:   make([]memberJSON, len(members)),
		Neighbors: snap.Neighbors(id),
	}
	for i, m := range members {
		out.Members[i] = memberJSON{m.X, m.Y, m.Z, m.Flag.String()}
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
