// Package viz turns harness artifacts into visual files a human can
// cross-check: a top-down PNG of the scene with both backends' paths
// overlaid, and OBJ polyline exports for 3D viewers.
package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/weiihann/navbench/scene"
)

// Overlay is one polyline drawn on top of the scene plot. Secondary
// overlays (region outlines and similar context) are drawn thin, without
// endpoint markers, and stay out of the legend.
type Overlay struct {
	Name      string
	Points    [][3]float32
	Color     color.RGBA
	Secondary bool
}

// Options controls plot geometry. Zero values take defaults.
type Options struct {
	Width  int // output width in pixels; height follows the scene aspect
	Margin int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1024
	}
	if o.Margin <= 0 {
		o.Margin = 24
	}

	return o
}

// RenderTopDown draws an orthographic top-down plot: world x maps to
// image x and world z to image y, triangles shaded by height, overlays
// drawn as thick colored polylines with start/end markers and a legend.
func RenderTopDown(buf *scene.TriangleBuffer, overlays []Overlay, opts Options) *image.RGBA {
	opts = opts.withDefaults()

	bmin, bmax := buf.Bounds()

	spanX := bmax[0] - bmin[0]
	spanZ := bmax[2] - bmin[2]
	if spanX <= 0 {
		spanX = 1
	}
	if spanZ <= 0 {
		spanZ = 1
	}

	plotW := opts.Width - 2*opts.Margin
	scale := float32(plotW) / spanX
	height := int(spanZ*scale) + 2*opts.Margin

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{24, 24, 28, 255}), image.Point{}, draw.Src)

	toPx := func(p [3]float32) (float32, float32) {
		x := float32(opts.Margin) + (p[0]-bmin[0])*scale
		y := float32(opts.Margin) + (p[2]-bmin[2])*scale

		return x, y
	}

	spanY := bmax[1] - bmin[1]
	if spanY <= 0 {
		spanY = 1
	}

	for i := 0; i < buf.TriangleCount(); i++ {
		tri := buf.Triangle(i)

		// Shade by average height so obstacles stand out from the floor.
		avgY := (tri[0][1] + tri[1][1] + tri[2][1]) / 3
		shade := uint8(70 + 120*(avgY-bmin[1])/spanY)

		fillTriangle(img, tri, toPx, color.RGBA{shade, shade, shade, 255})
	}

	for _, ov := range overlays {
		if ov.Secondary {
			drawPolyline(img, ov.Points, toPx, ov.Color, 1)

			continue
		}

		drawPolyline(img, ov.Points, toPx, ov.Color, 3)

		if len(ov.Points) > 0 {
			drawMarker(img, ov.Points[0], toPx, ov.Color, 6)
			drawMarker(img, ov.Points[len(ov.Points)-1], toPx, ov.Color, 6)
		}
	}

	drawLegend(img, overlays, opts.Margin)

	return img
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	return nil
}

func fillTriangle(img *image.RGBA, tri [3][3]float32, toPx func([3]float32) (float32, float32), col color.RGBA) {
	r := vector.NewRasterizer(img.Bounds().Dx(), img.Bounds().Dy())

	x0, y0 := toPx(tri[0])
	x1, y1 := toPx(tri[1])
	x2, y2 := toPx(tri[2])

	r.MoveTo(x0, y0)
	r.LineTo(x1, y1)
	r.LineTo(x2, y2)
	r.ClosePath()

	r.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{})
}

func drawPolyline(img *image.RGBA, points [][3]float32, toPx func([3]float32) (float32, float32), col color.RGBA, width float32) {
	if len(points) < 2 {
		return
	}

	r := vector.NewRasterizer(img.Bounds().Dx(), img.Bounds().Dy())
	half := width / 2

	for i := 1; i < len(points); i++ {
		x0, y0 := toPx(points[i-1])
		x1, y1 := toPx(points[i])

		dx, dy := x1-x0, y1-y0
		length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		if length == 0 {
			continue
		}

		// Perpendicular offset turns the segment into a filled quad.
		ox := -dy / length * half
		oy := dx / length * half

		r.MoveTo(x0+ox, y0+oy)
		r.LineTo(x1+ox, y1+oy)
		r.LineTo(x1-ox, y1-oy)
		r.LineTo(x0-ox, y0-oy)
		r.ClosePath()
	}

	r.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{})
}

func drawMarker(img *image.RGBA, p [3]float32, toPx func([3]float32) (float32, float32), col color.RGBA, radius float32) {
	r := vector.NewRasterizer(img.Bounds().Dx(), img.Bounds().Dy())

	cx, cy := toPx(p)

	const segments = 16

	r.MoveTo(cx+radius, cy)
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		r.LineTo(cx+radius*float32(math.Cos(a)), cy+radius*float32(math.Sin(a)))
	}
	r.ClosePath()

	r.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{})
}

func drawLegend(img *image.RGBA, overlays []Overlay, margin int) {
	face := basicfont.Face7x13

	row := 0
	for _, ov := range overlays {
		if ov.Secondary {
			continue
		}

		label := ov.Name
		if len(ov.Points) == 0 {
			label += " (no path)"
		}

		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(ov.Color),
			Face: face,
			Dot:  fixed.P(margin, margin+row*(face.Height+4)),
		}
		d.DrawString(label)

		row++
	}
}
