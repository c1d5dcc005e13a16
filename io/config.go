package io

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/cells"
	"github.com/phil-mansfield/cells/geom"
)

const (
	ExampleBinFile = `[CellList]

#######################
# Required Parameters #
#######################

# Target width of a cell. Cells are never narrower than this, so it should be
# at least the interaction cutoff.
NominalWidth = 1.0

#######################
# Optional Parameters #
#######################

# Number of cells in each direction included in every cell's adjacency list.
# Radius = 1

# Upper limit on the total number of cells. If the box would need more, the
# cells are made uniformly wider.
# MaxCells = 1000000

# Also bin particle types, diameters and body ids. Requires ExtraColumns.
# ComputeTDB = false

# What the fourth component of every binned position carries. Must be one of
# [ Index | Charge ]. Charge requires ExtraColumns.
# Flag = Index

# Must be one of [ Serial | Parallel ]. Workers defaults to the number of
# logical cores.
# Backend = Serial
# Workers = 8

[Box]

#######################
# Required Parameters #
#######################

# Location of the lowermost corner:
X = 0
Y = 0
Z = 0

# Width of the box in each dimension. For a 2D box, ZWidth is the thickness
# of the particle layer.
XWidth = 10
YWidth = 10
ZWidth = 10

#######################
# Optional Parameters #
#######################

# Must be 2 or 3.
# Dimensions = 3

[Run]

#######################
# Required Parameters #
#######################

# Whitespace-separated particle table with x, y, z columns, optionally
# followed by charge, type, diameter and body columns.
Input = path/to/particles.txt
# Binary cell list written after the final step.
Output = path/to/cells.gcl

#######################
# Optional Parameters #
#######################

# Set if Input has the charge, type, diameter and body columns.
# ExtraColumns = false

# Random walk driver. Every step moves each particle by a uniform offset of
# at most StepSize in each direction, and multiplies the box width by
# BoxScale.
# Steps = 0
# StepSize = 0.05
# BoxScale = 1.0
# Seed = 0

# Particles are reordered by cell every SortInterval steps (0 disables).
# Cells are rebinned every ComputeInterval steps unless something forces it.
# SortInterval = 0
# ComputeInterval = 1

# Diagnostics written after the final step. OccupancyImage is a PNG of the
# ImageLayer-th z layer, OccupancyPlot is a histogram rendered by pyplot.
# OccupancyImage = occupancy.png
# ImageLayer = 0
# OccupancyPlot = occupancy_hist.png

# ProfileFile = prof.out
# LogFile = log.out`
)

type CellListConfig struct {
	// Required
	NominalWidth float64

	// Optional
	Radius, MaxCells int
	ComputeTDB      bool
	Flag, Backend   string
	Workers         int
}

func (con *CellListConfig) ValidNominalWidth() bool {
	return con.NominalWidth > 0
}
func (con *CellListConfig) ValidRadius() bool {
	return con.Radius >= 0
}
func (con *CellListConfig) ValidMaxCells() bool {
	return con.MaxCells > 0
}
func (con *CellListConfig) ValidWorkers() bool {
	return con.Workers > 0
}

func (con *CellListConfig) flagKind() cells.FlagKind {
	var k cells.FlagKind
	for k = 0; k < cells.EndFlagKind; k++ {
		if strings.ToLower(k.String()) == strings.ToLower(con.Flag) {
			return k
		}
	}
	return cells.EndFlagKind
}

// Params converts the section into cells.Params and returns an error if
// the result cannot be used.
func (con *CellListConfig) Params() (cells.Params, error) {
	p := cells.DefaultParams()
	p.NominalWidth = con.NominalWidth
	p.Radius = con.Radius
	p.MaxCells = con.MaxCells
	p.ComputeTDB = con.ComputeTDB
	p.Workers = con.Workers

	if p.FlagKind = con.flagKind(); p.FlagKind == cells.EndFlagKind {
		return p, fmt.Errorf(
			"'Flag' must be one of [Index | Charge], not '%s'.", con.Flag,
		)
	}

	var err error
	if p.Backend, err = cells.ParseBackend(con.Backend); err != nil {
		return p, fmt.Errorf(
			"'Backend' must be one of [Serial | Parallel], not '%s'.",
			con.Backend,
		)
	}

	return p, p.Validate()
}

type BoxConfig struct {
	// Required
	X, Y, Z                float64
	XWidth, YWidth, ZWidth float64

	// Optional
	Dimensions int
}

func (box *BoxConfig) CheckInit() error {
	if box.XWidth <= 0 {
		return fmt.Errorf("Need to specify a positive XWidth for Box.")
	} else if box.YWidth <= 0 {
		return fmt.Errorf("Need to specify a positive YWidth for Box.")
	} else if box.ZWidth <= 0 {
		return fmt.Errorf("Need to specify a positive ZWidth for Box.")
	}

	if box.Dimensions != 2 && box.Dimensions != 3 {
		return fmt.Errorf(
			"Dimensions of Box must be 2 or 3, but is %d.", box.Dimensions,
		)
	}
	return nil
}

// Box converts the section into a geom.Box.
func (box *BoxConfig) Box() geom.Box {
	return geom.Box{
		Lo:   geom.Vec{box.X, box.Y, box.Z},
		Hi:   geom.Vec{box.X + box.XWidth, box.Y + box.YWidth, box.Z + box.ZWidth},
		Dims: box.Dimensions,
	}
}

type RunConfig struct {
	// Required
	Input, Output string

	// Optional
	ExtraColumns bool

	Steps              int
	StepSize, BoxScale float64
	Seed               int64

	SortInterval, ComputeInterval int

	OccupancyImage, OccupancyPlot string
	ImageLayer                    int

	LogFile, ProfileFile string
}

func (con *RunConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *RunConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *RunConfig) ValidSteps() bool {
	return con.Steps >= 0
}
func (con *RunConfig) ValidBoxScale() bool {
	return con.BoxScale > 0
}
func (con *RunConfig) ValidComputeInterval() bool {
	return con.ComputeInterval > 0
}
func (con *RunConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *RunConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}
func (con *RunConfig) ValidOccupancyImage() bool {
	return con.OccupancyImage != ""
}
func (con *RunConfig) ValidOccupancyPlot() bool {
	return con.OccupancyPlot != ""
}

type BinWrapper struct {
	CellList CellListConfig
	Box      BoxConfig
	Run      RunConfig
}

func DefaultBinWrapper() *BinWrapper {
	w := &BinWrapper{}
	w.CellList.Radius = 1
	w.CellList.MaxCells = math.MaxInt32
	w.CellList.Flag = "Index"
	w.CellList.Backend = "Serial"
	w.CellList.Workers = runtime.NumCPU()
	w.Box.Dimensions = 3
	w.Run.StepSize = 0.05
	w.Run.BoxScale = 1
	w.Run.ComputeInterval = 1
	return w
}

// CheckInit returns a descriptive error for the first invalid value.
func (w *BinWrapper) CheckInit() error {
	cl, run := &w.CellList, &w.Run

	switch {
	case !cl.ValidNominalWidth():
		return fmt.Errorf("Invalid/non-existent 'NominalWidth' value.")
	case !cl.ValidRadius():
		return fmt.Errorf("Invalid 'Radius' value, %d.", cl.Radius)
	case !cl.ValidMaxCells():
		return fmt.Errorf("Invalid 'MaxCells' value, %d.", cl.MaxCells)
	case !cl.ValidWorkers():
		return fmt.Errorf("Invalid 'Workers' value, %d.", cl.Workers)
	}
	if _, err := cl.Params(); err != nil {
		return err
	}

	if err := w.Box.CheckInit(); err != nil {
		return err
	}

	switch {
	case !run.ValidInput():
		return fmt.Errorf("Invalid/non-existent 'Input' value.")
	case !run.ValidOutput():
		return fmt.Errorf("Invalid/non-existent 'Output' value.")
	case !run.ValidSteps():
		return fmt.Errorf("Invalid 'Steps' value, %d.", run.Steps)
	case !run.ValidBoxScale():
		return fmt.Errorf("Invalid 'BoxScale' value, %g.", run.BoxScale)
	case !run.ValidComputeInterval():
		return fmt.Errorf(
			"Invalid 'ComputeInterval' value, %d.", run.ComputeInterval,
		)
	case run.SortInterval < 0:
		return fmt.Errorf("Invalid 'SortInterval' value, %d.", run.SortInterval)
	}

	needExtra := cl.ComputeTDB || cl.flagKind() == cells.FlagCharge
	if needExtra && !run.ExtraColumns {
		return fmt.Errorf(
			"'ComputeTDB' and 'Flag = Charge' need 'ExtraColumns' to be set.",
		)
	}
	return nil
}

// ReadBinConfig reads and checks a [CellList]/[Box]/[Run] file.
func ReadBinConfig(fname string) (*BinWrapper, error) {
	w := DefaultBinWrapper()
	if err := gcfg.ReadFileInto(w, fname); err != nil {
		return nil, err
	}
	if err := w.CheckInit(); err != nil {
		return nil, err
	}
	return w, nil
}

// ReadBinConfigString is ReadBinConfig for in-memory text.
func ReadBinConfigString(str string) (*BinWrapper, error) {
	w := DefaultBinWrapper()
	if err := gcfg.ReadStringInto(w, str); err != nil {
		return nil, err
	}
	if err := w.CheckInit(); err != nil {
		return nil, err
	}
	return w, nil
}
