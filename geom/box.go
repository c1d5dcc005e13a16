package geom

import (
	"fmt"
	"math"
)

// Vec is a position in simulation units.
type Vec [3]float64

// Finite returns true if every component of v is neither NaN nor infinite.
func (v *Vec) Finite() bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return false
		}
	}
	return true
}

// Box is an axis-aligned periodic simulation domain. Dims is 2 or 3. A 2D box
// still carries a z extent; it is ignored when choosing cell counts.
type Box struct {
	Lo, Hi Vec
	Dims   int
}

// NewBox returns a box spanning [0, width) on every axis.
func NewBox(width float64, dims int) Box {
	return Box{Hi: Vec{width, width, width}, Dims: dims}
}

// Validate returns an error if the box cannot be gridded.
func (b *Box) Validate() error {
	if b.Dims != 2 && b.Dims != 3 {
		return fmt.Errorf("Box has %d dimensions, must be 2 or 3.", b.Dims)
	}
	for i := 0; i < 3; i++ {
		if !(b.Hi[i] > b.Lo[i]) {
			return fmt.Errorf(
				"Box axis %d has upper bound %g, which is not above "+
					"its lower bound %g.", i, b.Hi[i], b.Lo[i],
			)
		}
	}
	return nil
}

// Len returns the length of the box along axis i.
func (b *Box) Len(i int) float64 { return b.Hi[i] - b.Lo[i] }

// Scale returns a copy of the box with every used axis scaled by f about
// the box center.
func (b *Box) Scale(f float64) Box {
	out := *b
	for i := 0; i < b.Dims; i++ {
		c := (b.Hi[i] + b.Lo[i]) / 2
		half := b.Len(i) * f / 2
		out.Lo[i], out.Hi[i] = c-half, c+half
	}
	return out
}

// Wrap maps v back into [Lo, Hi) on every axis.
func (b *Box) Wrap(v *Vec) {
	for i := 0; i < 3; i++ {
		l := b.Len(i)
		x := math.Mod(v[i]-b.Lo[i], l)
		if x < 0 {
			x += l
		}
		// Mod can round a tiny negative up to exactly l.
		if x >= l {
			x = 0
		}
		v[i] = x + b.Lo[i]
	}
}
