// Package render draws a projected frame: LiDAR returns coloured by
// depth, the 2D rectangles and optionally the 3D box wireframes.
package render

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"kittiaug/pkg/synth"
)

// Options control what is drawn.
type Options struct {
	// Wireframe draws the 12 projected edges of every box.
	Wireframe bool
	// MaxDepth caps the colour scale, in metres.
	MaxDepth float64
}

var (
	rectColor      = color.RGBA{R: 255, A: 255}
	wireframeColor = color.RGBA{G: 255, A: 255}
)

// pixel size at the 96 dpi used for PNG output
const pixel = vg.Length(0.75)

// Plot builds the plot of one pose of a frame in image coordinates (v
// grows downwards).
func Plot(a synth.FrameAnnotation, width, height int, opts Options) (*plot.Plot, error) {
	p := plot.New()
	p.BackgroundColor = color.Black
	p.HideAxes()
	p.X.Min, p.X.Max = 0, float64(width)
	p.Y.Min, p.Y.Max = 0, float64(height)
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	px := a.Lidar.Masked(width, height)
	if len(px) > 0 {
		xys := make(plotter.XYs, len(px))
		maxDepth := opts.MaxDepth
		for i, q := range px {
			xys[i] = plotter.XY{X: q.U, Y: q.V}
			if opts.MaxDepth <= 0 && q.Depth > maxDepth {
				maxDepth = q.Depth
			}
		}
		cm := moreland.SmoothBlueRed()
		cm.SetMin(0)
		cm.SetMax(maxDepth)
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			d := px[i].Depth
			if d > maxDepth {
				d = maxDepth
			}
			c, err := cm.At(d)
			if err != nil {
				c = color.White
			}
			return draw.GlyphStyle{Color: c, Radius: pixel, Shape: draw.CircleGlyph{}}
		}
		p.Add(sc)
	}

	for _, o := range a.Objects {
		r := o.Rect
		l, err := plotter.NewLine(plotter.XYs{
			{X: r.XMin, Y: r.YMin}, {X: r.XMax, Y: r.YMin},
			{X: r.XMax, Y: r.YMax}, {X: r.XMin, Y: r.YMax},
			{X: r.XMin, Y: r.YMin},
		})
		if err != nil {
			continue
		}
		l.Color = rectColor
		l.Width = 2 * pixel
		p.Add(l)

		if !opts.Wireframe {
			continue
		}
		for _, e := range o.Box.Edges() {
			l, err := plotter.NewLine(plotter.XYs{{X: e[0].X, Y: e[0].Y}, {X: e[1].X, Y: e[1].Y}})
			if err != nil {
				// edges touching a point behind the camera are not finite
				continue
			}
			l.Color = wireframeColor
			l.Width = 1.5 * pixel
			p.Add(l)
		}
	}
	return p, nil
}

// Save renders a to a PNG (or any format plot.Save understands) at path.
func Save(path string, a synth.FrameAnnotation, width, height int, opts Options) error {
	p, err := Plot(a, width, height, opts)
	if err != nil {
		return err
	}
	return p.Save(vg.Length(width)*pixel, vg.Length(height)*pixel, path)
}
