package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]uint32{0, 3, 0, 40, 5, 0}, 32)
	assert.Equal(t, Summary{
		Cells: 6, Particles: 48, Nmax: 32, Max: 40,
		Empty: 3, Overflowed: 1, Mean: 8,
	}, s)

	assert.Equal(t, Summary{Nmax: 32}, Summarize(nil, 32))
}

func TestHistogram(t *testing.T) {
	assert.Equal(t, []int{2, 1, 0, 2}, Histogram([]uint32{0, 3, 1, 0, 3}))
	assert.Equal(t, []int{0}, Histogram(nil))
}

func TestLayer(t *testing.T) {
	sizes := make([]uint32, 2*3*4)
	for i := range sizes {
		sizes[i] = uint32(i)
	}

	layer, err := Layer(sizes, [3]int{2, 3, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{12, 13, 14, 15, 16, 17}, layer)

	_, err = Layer(sizes, [3]int{2, 3, 4}, 4)
	assert.Error(t, err)
	_, err = Layer(sizes, [3]int{2, 3, 5}, 0)
	assert.Error(t, err)
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func TestLayerImage(t *testing.T) {
	// (0,0) empty, (1,0) half full, (0,1) overflowed, (1,1) full.
	layer := []uint32{0, 16, 40, 32}
	img, err := LayerImage(layer, 2, 2, 32, 10)
	require.NoError(t, err)

	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	assert.Equal(t, emptyColor, rgba(img.At(5, 15)))
	assert.Equal(t, color.RGBA{155, 155, 155, 255}, rgba(img.At(15, 15)))
	assert.Equal(t, overflowColor, rgba(img.At(5, 5)))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba(img.At(15, 5)))
}

func TestLayerImageErrors(t *testing.T) {
	_, err := LayerImage([]uint32{1, 2, 3}, 2, 2, 32, 10)
	assert.Error(t, err)
	_, err = LayerImage([]uint32{1, 2, 3, 4}, 2, 2, 32, 0)
	assert.Error(t, err)
	_, err = LayerImage([]uint32{1, 2, 3, 4}, 2, 2, 0, 1)
	assert.Error(t, err)
}

func TestSaveLayerPNG(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "layer.png")
	require.NoError(t, SaveLayerPNG([]uint32{1, 2, 3, 4}, 2, 2, 32, 3, fname))

	info, err := os.Stat(fname)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
