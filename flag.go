package cells

import (
	"fmt"
	"math"
)

// FlagKind is the meaning of the scalar stored alongside each binned
// position. It is fixed for the lifetime of a grid.
type FlagKind uint8

const (
	// FlagIndex stores the particle's index in the System.
	FlagIndex FlagKind = iota
	// FlagCharge stores the particle's charge.
	FlagCharge
	EndFlagKind
)

var flagKindNames = [...]string{"Index", "Charge"}

func (k FlagKind) String() string {
	if k >= EndFlagKind {
		return fmt.Sprintf("FlagKind(%d)", uint8(k))
	}
	return flagKindNames[k]
}

// Flag is a tagged 64-bit payload holding either a particle index or a
// charge.
type Flag struct {
	Kind FlagKind
	bits uint64
}

// IndexFlag returns a Flag carrying particle index n.
func IndexFlag(n int) Flag { return Flag{FlagIndex, uint64(n)} }

// ChargeFlag returns a Flag carrying charge q.
func ChargeFlag(q float64) Flag { return Flag{FlagCharge, math.Float64bits(q)} }

// Index returns the particle index and true if f carries one.
func (f Flag) Index() (int, bool) {
	if f.Kind != FlagIndex {
		return -1, false
	}
	return int(f.bits), true
}

// Charge returns the charge and true if f carries one.
func (f Flag) Charge() (float64, bool) {
	if f.Kind != FlagCharge {
		return 0, false
	}
	return math.Float64frombits(f.bits), true
}

// Bits returns the raw payload of f.
func (f Flag) Bits() uint64 { return f.bits }

// FlagFromBits rebuilds a Flag from its kind and the value of Bits.
func FlagFromBits(k FlagKind, bits uint64) Flag { return Flag{k, bits} }

func (f Flag) String() string {
	if q, ok := f.Charge(); ok {
		return fmt.Sprintf("Charge(%g)", q)
	}
	n, _ := f.Index()
	return fmt.Sprintf("Index(%d)", n)
}

// XYZF is a binned particle position plus its flag.
type XYZF struct {
	X, Y, Z float64
	Flag    Flag
}

// TDB is the optional per-slot payload of type, diameter and body id.
type TDB struct {
	Type     int
	Diameter float64
	Body     int
}
