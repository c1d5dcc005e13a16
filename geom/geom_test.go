package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex3DRoundTrip(t *testing.T) {
	g := NewIndex3D([3]int{4, 5, 6})
	assert.Equal(t, 120, g.Len())

	seen := make([]bool, g.Len())
	for z := 0; z < 6; z++ {
		for y := 0; y < 5; y++ {
			for x := 0; x < 4; x++ {
				idx := g.Idx(x, y, z)
				assert.False(t, seen[idx], "index %d repeated", idx)
				seen[idx] = true

				cx, cy, cz := g.Coords(idx)
				assert.Equal(t, [3]int{x, y, z}, [3]int{cx, cy, cz})
			}
		}
	}
}

func TestIndex3DBounds(t *testing.T) {
	g := NewIndex3D([3]int{3, 3, 3})
	_, ok := g.IdxCheck(3, 0, 0)
	assert.False(t, ok)
	_, ok = g.IdxCheck(0, -1, 0)
	assert.False(t, ok)
	idx, ok := g.IdxCheck(2, 2, 2)
	assert.True(t, ok)
	assert.Equal(t, 26, idx)

	x, y, z := g.Wrap(-1, 3, 7)
	assert.Equal(t, [3]int{2, 0, 1}, [3]int{x, y, z})
}

func TestIndex2D(t *testing.T) {
	g := NewIndex2D(32, 10)
	assert.Equal(t, 320, g.Len())
	assert.Equal(t, 0, g.Idx(0, 0))
	assert.Equal(t, 31, g.Idx(31, 0))
	assert.Equal(t, 32, g.Idx(0, 1))
	assert.Equal(t, 319, g.Idx(31, 9))
}

func TestPMod(t *testing.T) {
	table := []struct{ x, y, m int }{
		{5, 3, 2}, {-1, 3, 2}, {-3, 3, 0}, {-4, 3, 2}, {0, 1, 0},
	}
	for _, row := range table {
		assert.Equal(t, row.m, PMod(row.x, row.y), "PMod(%d, %d)", row.x, row.y)
	}
}

func TestBoxValidate(t *testing.T) {
	b := NewBox(10, 3)
	assert.NoError(t, b.Validate())

	b.Hi[1] = b.Lo[1]
	assert.Error(t, b.Validate())

	b = NewBox(10, 4)
	assert.Error(t, b.Validate())
}

func TestBoxScaleAndWrap(t *testing.T) {
	b := NewBox(10, 2)
	s := b.Scale(0.5)
	assert.Equal(t, Vec{2.5, 2.5, 0}, s.Lo)
	assert.Equal(t, Vec{7.5, 7.5, 10}, s.Hi)

	v := Vec{-1, 10, 25}
	b.Wrap(&v)
	assert.InDelta(t, 9, v[0], 1e-12)
	assert.InDelta(t, 0, v[1], 1e-12)
	assert.InDelta(t, 5, v[2], 1e-12)

	v = Vec{1, math.NaN(), 0}
	assert.False(t, v.Finite())
	v = Vec{1, math.Inf(-1), 0}
	assert.False(t, v.Finite())
}
