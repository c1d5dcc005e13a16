package io

import (
	"bufio"
	"fmt"
	"io"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/cells"
	"github.com/phil-mansfield/cells/geom"
)

var (
	positionCols = []int{0, 1, 2}
	extraCols    = []int{0, 1, 2, 3, 4, 5, 6}
)

// ReadParticles reads a whitespace-separated particle table. Columns are
// x, y, z and, if extra is set, charge, type, diameter and body.
func ReadParticles(fname string, extra bool) (*cells.Particles, error) {
	colIdxs := positionCols
	if extra {
		colIdxs = extraCols
	}

	cols, err := table.ReadTable(fname, colIdxs, nil)
	if err != nil {
		return nil, err
	}

	n := len(cols[0])
	p := &cells.Particles{Xs: make([]geom.Vec, n)}
	for i := range p.Xs {
		p.Xs[i] = geom.Vec{cols[0][i], cols[1][i], cols[2][i]}
	}

	if !extra {
		return p, nil
	}

	p.Charges = cols[3]
	p.Types = make([]int, n)
	p.Diameters = cols[5]
	p.Bodies = make([]int, n)
	for i := 0; i < n; i++ {
		p.Types[i] = int(cols[4][i])
		p.Bodies[i] = int(cols[6][i])
	}
	return p, nil
}

// WriteParticles writes p in the format read by ReadParticles. The extra
// columns are written only if p has charges, types, diameters and bodies.
func WriteParticles(wr io.Writer, p *cells.Particles) error {
	n := p.N()
	extra := len(p.Charges) >= n && len(p.Types) >= n &&
		len(p.Diameters) >= n && len(p.Bodies) >= n

	bw := bufio.NewWriter(wr)
	fmt.Fprintln(bw, "# x y z")
	for i, x := range p.Xs {
		if extra {
			fmt.Fprintf(
				bw, "%.17g %.17g %.17g %.17g %d %.17g %d\n",
				x[0], x[1], x[2],
				p.Charges[i], p.Types[i], p.Diameters[i], p.Bodies[i],
			)
		} else {
			fmt.Fprintf(bw, "%.17g %.17g %.17g\n", x[0], x[1], x[2])
		}
	}
	return bw.Flush()
}
