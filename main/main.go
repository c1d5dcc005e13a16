package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"

	plt "github.com/phil-mansfield/pyplot"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/phil-mansfield/cells"
	"github.com/phil-mansfield/cells/integrator"
	"github.com/phil-mansfield/cells/io"
	"github.com/phil-mansfield/cells/metrics"
	"github.com/phil-mansfield/cells/render"
	"github.com/phil-mansfield/cells/server"
)

const imageCellPixels = 16

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	var (
		binStr, exampleConfig string
		serveAddr             string
		threads               int
	)
	vars := map[string]*string{
		"Bin":           &binStr,
		"ExampleConfig": &exampleConfig,
	}

	flag.IntVar(
		&threads, "Threads", 0,
		"Number of goroutines used by the Parallel backend. Overrides the "+
			"'Workers' value of the configuration file if positive.",
	)
	flag.StringVar(
		&binStr, "Bin", "",
		"Configuration file for [Bin] mode, which bins a particle table, "+
			"optionally drives it for some number of steps and writes the "+
			"resulting cell list.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. The only accepted argument is 'Bin'.",
	)
	flag.StringVar(
		&serveAddr, "Serve", "",
		"If set, serves /metrics, /grid and /cells/{id} on this address "+
			"(e.g. 127.0.0.1:6060) until interrupted.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Bin":
		wrap, err := io.ReadBinConfig(binStr)
		if err != nil {
			log.Fatal(err.Error())
		}
		if threads > 0 {
			wrap.CellList.Workers = threads
		}
		binMain(wrap, serveAddr)

	case "ExampleConfig":
		switch exampleConfig {
		case "Bin":
			fmt.Println(io.ExampleBinFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only " +
					"recognized argument is 'Bin'.",
			)
		}
	default:
		panic("Impossible")
	}
}

// getModeName returns the name of the mode and fails with a descriptive error
// if the user provided less or more than one mode flag.
func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but cells only accepts "+
				"one mode flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func binMain(wrap *io.BinWrapper, serveAddr string) {
	run := &wrap.Run
	fg := setupIO(run)
	defer fg.Close()

	p, err := io.ReadParticles(run.Input, run.ExtraColumns)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Read %d particles from %s.", p.N(), run.Input)

	store, err := integrator.NewStore(wrap.Box.Box(), p)
	if err != nil {
		log.Fatal(err.Error())
	}

	params, err := wrap.CellList.Params()
	if err != nil {
		log.Fatal(err.Error())
	}
	cl, err := cells.New(store, params)
	if err != nil {
		log.Fatal(err.Error())
	}
	cl.Log(true)
	if run.ComputeInterval > 1 {
		cl.SetScheduler(cells.Every(run.ComputeInterval))
	}

	reg := prometheus.NewRegistry()
	cl.SetObserver(metrics.NewObserver(reg))
	pub := &server.Publisher{}

	if serveAddr != "" {
		router := server.NewRouter(server.RouterConfig{
			Publisher: pub, Gatherer: reg,
		})
		go func() {
			log.Printf("Debug server starting on %s", serveAddr)
			if err := http.ListenAndServe(serveAddr, router); err != nil {
				log.Printf("Debug server stopped: %s", err.Error())
			}
		}()
	}

	d, err := integrator.NewDriver(store, cl, integrator.Config{
		StepSize:     run.StepSize,
		BoxScale:     run.BoxScale,
		SortInterval: run.SortInterval,
		Seed:         run.Seed,
	})
	if err != nil {
		log.Fatal(err.Error())
	}
	d.Log(true)
	pub.Publish(cl, d.CurrentStep())

	for i := 0; i < run.Steps; i++ {
		err := d.Advance()
		pub.Publish(cl, d.CurrentStep())
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	st := cl.Stats()
	log.Printf(
		"Finished %d steps: %d full rebuilds, %d width updates, %d passes.",
		d.CurrentStep(), st.FullRebuilds, st.WidthUpdates, st.BinPasses,
	)
	log.Println(render.Summarize(cl.CellSizes(), cl.Nmax()).String())

	writeOutput(cl, d.CurrentStep(), run)

	if serveAddr != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		log.Printf("Serving until interrupted.")
		<-ctx.Done()
	}
}

// setupIO redirects logging and starts profiling, as requested by run.
func setupIO(run *io.RunConfig) *FileGroup {
	var err error
	fg := new(FileGroup)

	if run.ValidLogFile() {
		fg.log, err = os.Create(run.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	if run.ValidProfileFile() {
		fg.prof, err = os.Create(run.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	return fg
}

func writeOutput(cl *cells.CellList, step uint64, run *io.RunConfig) {
	f, err := os.Create(run.Output)
	if err != nil {
		log.Fatal(err.Error())
	}
	if err = io.WriteCellList(cl, step, f); err != nil {
		log.Fatal(err.Error())
	}
	if err = f.Close(); err != nil {
		log.Fatal(err.Error())
	}

	if run.ValidOccupancyImage() {
		dim := cl.Dim()
		layer, err := render.Layer(cl.CellSizes(), dim, run.ImageLayer)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = render.SaveLayerPNG(
			layer, dim[0], dim[1], cl.Nmax(), imageCellPixels,
			run.OccupancyImage,
		)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if run.ValidOccupancyPlot() {
		render.PlotSummary(cl.CellSizes(), cl.Nmax(), step, run.OccupancyPlot)
		plt.Execute()
	}
}
