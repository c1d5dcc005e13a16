package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

var (
	emptyColor    = color.RGBA{12, 12, 28, 255}
	overflowColor = color.RGBA{220, 40, 40, 255}
	gridColor     = color.RGBA{60, 60, 70, 255}
)

// LayerImage draws a heat map of one layer of cell occupancies, as returned
// by Layer, with w x h cells and pix pixels per cell. Brightness is
// proportional to occupancy / nmax. Overflowed cells are red.
func LayerImage(layer []uint32, w, h, nmax, pix int) (image.Image, error) {
	if w <= 0 || h <= 0 || len(layer) != w*h {
		return nil, fmt.Errorf(
			"Layer of %d cells does not have dimensions %d x %d.",
			len(layer), w, h,
		)
	} else if pix <= 0 {
		return nil, fmt.Errorf("Need a positive cell size, not %d.", pix)
	} else if nmax <= 0 {
		return nil, fmt.Errorf("Need a positive capacity, not %d.", nmax)
	}

	dc := gg.NewContext(w*pix, h*pix)
	dc.SetColor(emptyColor)
	dc.DrawRectangle(0, 0, float64(w*pix), float64(h*pix))
	dc.Fill()

	p := float64(pix)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := int(layer[x+y*w])
			if n == 0 {
				continue
			}
			dc.SetColor(cellColor(n, nmax))
			// y grows upwards in the grid and downwards in the image.
			dc.DrawRectangle(float64(x)*p, float64(h-1-y)*p, p, p)
			dc.Fill()
		}
	}

	if pix >= 4 {
		dc.SetColor(gridColor)
		dc.SetLineWidth(1)
		for x := 0; x <= w; x++ {
			dc.DrawLine(float64(x)*p, 0, float64(x)*p, float64(h)*p)
			dc.Stroke()
		}
		for y := 0; y <= h; y++ {
			dc.DrawLine(0, float64(y)*p, float64(w)*p, float64(y)*p)
			dc.Stroke()
		}
	}

	return dc.Image(), nil
}

// SaveLayerPNG writes LayerImage to fname.
func SaveLayerPNG(layer []uint32, w, h, nmax, pix int, fname string) error {
	img, err := LayerImage(layer, w, h, nmax, pix)
	if err != nil {
		return err
	}
	return gg.SavePNG(fname, img)
}

func cellColor(n, nmax int) color.Color {
	if n > nmax {
		return overflowColor
	}
	v := uint8(55 + 200*n/nmax)
	return color.RGBA{v, v, v, 255}
}
