package rimage

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Colors used when annotating measurements.
var (
	Red    = color.NRGBA{R: 255, A: 255}
	Green  = color.NRGBA{G: 255, A: 255}
	Blue   = color.NRGBA{B: 255, A: 255}
	Yellow = color.NRGBA{R: 255, G: 255, A: 255}
)

// Marker is a vertical line drawn at a pixel column.
type Marker struct {
	Column int
	Color  color.Color
}

// DrawCrosshair draws the scanline and center column used for measurement.
func DrawCrosshair(dc *gg.Context, c color.Color, width float64) {
	w, h := float64(dc.Width()), float64(dc.Height())
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawLine(0, h/2, w, h/2)
	dc.Stroke()
	dc.DrawLine(w/2, 0, w/2, h)
	dc.Stroke()
}

// DrawColumn draws a full-height vertical line at the center of column x.
func DrawColumn(dc *gg.Context, x int, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawLine(float64(x)+0.5, 0, float64(x)+0.5, float64(dc.Height()))
	dc.Stroke()
}

// Annotate returns a copy of img with the measurement crosshair and the given edge markers.
func Annotate(img image.Image, markers ...Marker) image.Image {
	dc := gg.NewContextForImage(img)
	DrawCrosshair(dc, Red, 3)
	for _, m := range markers {
		DrawColumn(dc, m.Column, m.Color, 1)
	}
	return dc.Image()
}
