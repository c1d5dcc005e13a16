package io

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unsafe"

	"github.com/phil-mansfield/cells"
	"github.com/phil-mansfield/cells/geom"
)

var end = binary.LittleEndian

/*
The binary format used for cell list files is as follows:
    |-- 1 --||-- 2 --||-- ... 3 ... --||-- ... 4 ... --|

    1 - (CellListHeader) Meta-information. Its first field is -1 for a
        little endian file and 0 for a big endian file.
    2 - ([]uint32) Occupancy of every cell.
    3 - ([]xyzfRecord) Nmax * Cells slots, slot-major within each cell.
        Followed by the same number of tdbRecords if HasTDB is 1.
    4 - ([]int64) AdjWidth * Cells neighboring cell ids.
*/
type CellListHeader struct {
	Endianness int64
	HeaderSize int64

	Step      int64
	Particles int64

	Dims  int64
	Dim   [3]int64
	Cells int64
	Width geom.Vec
	Lo    geom.Vec
	Hi    geom.Vec

	Nmax     int64
	Radius   int64
	AdjWidth int64
	FlagKind int64
	HasTDB   int64
}

type xyzfRecord struct {
	X, Y, Z float64
	Flag    uint64
}

type tdbRecord struct {
	Type     int64
	Diameter float64
	Body     int64
}

// CellListFile is the contents of a file written by WriteCellList.
type CellListFile struct {
	Header CellListHeader
	Sizes  []uint32
	XYZF   []cells.XYZF
	TDB    []cells.TDB
	Adj    []int
}

// Members returns the binned entries of a cell.
func (f *CellListFile) Members(cell int) []cells.XYZF {
	n := int(f.Sizes[cell])
	if n > int(f.Header.Nmax) {
		n = int(f.Header.Nmax)
	}
	start := cell * int(f.Header.Nmax)
	return f.XYZF[start : start+n]
}

// WriteCellList writes the current contents of cl. cl must be valid.
func WriteCellList(cl *cells.CellList, step uint64, wr io.Writer) error {
	if !cl.Valid() {
		return fmt.Errorf("Cannot write a cell list whose last pass failed.")
	}

	var endFlag int64
	if end == binary.LittleEndian {
		endFlag = -1
	} else {
		endFlag = 0
	}

	box, dim := cl.Box(), cl.Dim()
	hd := CellListHeader{
		Endianness: endFlag,
		Step:       int64(step),
		Dims:       int64(box.Dims),
		Dim:        [3]int64{int64(dim[0]), int64(dim[1]), int64(dim[2])},
		Cells:      int64(cl.NumCells()),
		Width:      cl.Width(),
		Lo:         box.Lo,
		Hi:         box.Hi,
		Nmax:       int64(cl.Nmax()),
		Radius:     int64(cl.Radius()),
		AdjWidth:   int64(cl.AdjIndexer().W),
		FlagKind:   int64(cl.FlagKind()),
	}
	hd.HeaderSize = int64(unsafe.Sizeof(hd))
	for _, size := range cl.CellSizes() {
		hd.Particles += int64(size)
	}
	if cl.TDB() != nil {
		hd.HasTDB = 1
	}

	xyzf := make([]xyzfRecord, len(cl.XYZF()))
	for i, e := range cl.XYZF() {
		xyzf[i] = xyzfRecord{e.X, e.Y, e.Z, e.Flag.Bits()}
	}
	adj := make([]int64, len(cl.Adj()))
	for i, nb := range cl.Adj() {
		adj[i] = int64(nb)
	}

	if err := binary.Write(wr, end, &hd); err != nil {
		return err
	}
	if err := binary.Write(wr, end, cl.CellSizes()); err != nil {
		return err
	}
	if err := binary.Write(wr, end, xyzf); err != nil {
		return err
	}
	if hd.HasTDB == 1 {
		tdb := make([]tdbRecord, len(cl.TDB()))
		for i, e := range cl.TDB() {
			tdb[i] = tdbRecord{int64(e.Type), e.Diameter, int64(e.Body)}
		}
		if err := binary.Write(wr, end, tdb); err != nil {
			return err
		}
	}
	return binary.Write(wr, end, adj)
}

// ReadCellListHeader reads only the header of a cell list file and returns
// the byte order it was written in.
func ReadCellListHeader(rd io.Reader) (*CellListHeader, binary.ByteOrder, error) {
	// Order doesn't matter for this read, since flags are symmetric.
	var flag int64
	if err := binary.Read(rd, binary.LittleEndian, &flag); err != nil {
		return nil, nil, err
	}

	var order binary.ByteOrder
	switch flag {
	case -1:
		order = binary.LittleEndian
	case 0:
		order = binary.BigEndian
	default:
		return nil, nil, fmt.Errorf(
			"Unrecognized endianness flag %d. Is this a cell list file?", flag,
		)
	}

	hd := &CellListHeader{}
	flagBytes := make([]byte, 8)
	order.PutUint64(flagBytes, uint64(flag))
	full := io.MultiReader(bytes.NewReader(flagBytes), rd)
	if err := binary.Read(full, order, hd); err != nil {
		return nil, nil, err
	}

	if hd.HeaderSize != int64(unsafe.Sizeof(*hd)) {
		return nil, nil, fmt.Errorf(
			"Expected CellListHeader size of %d, found %d.",
			unsafe.Sizeof(*hd), hd.HeaderSize,
		)
	}
	return hd, order, nil
}

// maxRecords bounds every array length read from a header.
const maxRecords = 1 << 36

// checkHeader returns an error if the array lengths implied by hd are
// inconsistent, negative, or too large to allocate.
func checkHeader(hd *CellListHeader) error {
	if hd.Dims != 2 && hd.Dims != 3 {
		return fmt.Errorf("Header has %d dimensions, must be 2 or 3.", hd.Dims)
	}
	if hd.Radius < 0 || hd.Nmax < 0 {
		return fmt.Errorf(
			"Header has negative Radius (%d) or Nmax (%d).", hd.Radius, hd.Nmax,
		)
	}

	numCells := int64(1)
	for _, n := range hd.Dim {
		if n < 1 || n > maxRecords/numCells {
			return fmt.Errorf("Header has invalid grid dimensions %v.", hd.Dim)
		}
		numCells *= n
	}
	if numCells != hd.Cells {
		return fmt.Errorf(
			"Header has %d cells, but dimensions %v imply %d.",
			hd.Cells, hd.Dim, numCells,
		)
	}

	if hd.Radius > maxRecords {
		return fmt.Errorf("Header has invalid Radius %d.", hd.Radius)
	}
	w := 2*hd.Radius + 1
	if w > maxRecords/w || w*w > maxRecords/w || hd.AdjWidth != w*w*w {
		return fmt.Errorf(
			"Header has AdjWidth %d, but Radius %d implies (2r+1)^3.",
			hd.AdjWidth, hd.Radius,
		)
	}

	if hd.Nmax > maxRecords/hd.Cells || hd.AdjWidth > maxRecords/hd.Cells {
		return fmt.Errorf(
			"Header arrays of %d x %d slots and %d x %d neighbors are too "+
				"large to read.", hd.Nmax, hd.Cells, hd.AdjWidth, hd.Cells,
		)
	}
	if hd.FlagKind < 0 || hd.FlagKind >= int64(cells.EndFlagKind) {
		return fmt.Errorf("Header has unrecognized flag kind %d.", hd.FlagKind)
	}
	return nil
}

// ReadCellList reads a file written by WriteCellList.
func ReadCellList(rd io.Reader) (*CellListFile, error) {
	hd, order, err := ReadCellListHeader(rd)
	if err != nil {
		return nil, err
	}

	if err := checkHeader(hd); err != nil {
		return nil, err
	}

	f := &CellListFile{Header: *hd}
	f.Sizes = make([]uint32, hd.Cells)
	if err := binary.Read(rd, order, f.Sizes); err != nil {
		return nil, err
	}

	kind := cells.FlagKind(hd.FlagKind)
	xyzf := make([]xyzfRecord, hd.Nmax*hd.Cells)
	if err := binary.Read(rd, order, xyzf); err != nil {
		return nil, err
	}
	f.XYZF = make([]cells.XYZF, len(xyzf))
	nmax := int(hd.Nmax)
	for cell, size := range f.Sizes {
		// Slots past the occupancy hold nothing meaningful.
		n := int(size)
		if n > nmax {
			n = nmax
		}
		for i := cell * nmax; i < cell*nmax+n; i++ {
			r := &xyzf[i]
			f.XYZF[i] = cells.XYZF{
				X: r.X, Y: r.Y, Z: r.Z, Flag: cells.FlagFromBits(kind, r.Flag),
			}
		}
	}

	if hd.HasTDB == 1 {
		tdb := make([]tdbRecord, hd.Nmax*hd.Cells)
		if err := binary.Read(rd, order, tdb); err != nil {
			return nil, err
		}
		f.TDB = make([]cells.TDB, len(tdb))
		for i, r := range tdb {
			f.TDB[i] = cells.TDB{
				Type: int(r.Type), Diameter: r.Diameter, Body: int(r.Body),
			}
		}
	}

	adj := make([]int64, hd.AdjWidth*hd.Cells)
	if err := binary.Read(rd, order, adj); err != nil {
		return nil, err
	}
	f.Adj = make([]int, len(adj))
	for i, nb := range adj {
		f.Adj[i] = int(nb)
	}

	return f, nil
}
