package project

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"kittiaug/pkg/calib"
	"kittiaug/pkg/label"
	"kittiaug/pkg/pose"
)

// DefaultNearPlane is the clipping depth, in metres, used by ClipNear.
const DefaultNearPlane = 0.1

// Rect is an axis-aligned image rectangle in pixels.
type Rect struct {
	XMin, YMin, XMax, YMax float64
}

func (r Rect) Width() float64  { return r.XMax - r.XMin }
func (r Rect) Height() float64 { return r.YMax - r.YMin }

// Intersect clips r to a width x height image. ok is false when nothing
// of r is left.
func (r Rect) Intersect(width, height int) (Rect, bool) {
	out := Rect{
		XMin: math.Max(r.XMin, 0),
		YMin: math.Max(r.YMin, 0),
		XMax: math.Min(r.XMax, float64(width)),
		YMax: math.Min(r.YMax, float64(height)),
	}
	return out, out.XMin < out.XMax && out.YMin < out.YMax
}

// ProjectedBox is a label box seen through one virtual pose.
type ProjectedBox struct {
	Points [8]r2.Point
	Depths [8]float64
	// Visible is false when every corner is behind the camera; Rect is
	// unset in that case.
	Visible bool
	Rect    Rect
}

// MinDepth and MaxDepth bound the corner depths.
func (b ProjectedBox) MinDepth() float64 {
	d := b.Depths[0]
	for _, v := range b.Depths[1:] {
		d = math.Min(d, v)
	}
	return d
}

func (b ProjectedBox) MaxDepth() float64 {
	d := b.Depths[0]
	for _, v := range b.Depths[1:] {
		d = math.Max(d, v)
	}
	return d
}

// Edges returns the 12 projected box edges in label.Edges order.
func (b ProjectedBox) Edges() [12][2]r2.Point {
	var out [12][2]r2.Point
	for i, e := range label.Edges {
		out[i] = [2]r2.Point{b.Points[e[0]], b.Points[e[1]]}
	}
	return out
}

// Box projects the corners of obj. The rectangle spans every corner with
// a finite projection, including those behind the camera, so a box straddling the image plane
// can come out stretched; BoxClipped avoids that.
func Box(obj label.Object, set *calib.Set, p pose.Pose) ProjectedBox {
	corners := obj.Corners()
	proj := CameraPoints(corners[:], set, p)

	var b ProjectedBox
	copy(b.Points[:], proj.Points)
	copy(b.Depths[:], proj.Depths)
	for _, d := range b.Depths {
		if d > 0 {
			b.Visible = true
			break
		}
	}
	if b.Visible {
		b.Rect, b.Visible = bounds(b.Points[:])
	}
	return b
}

// BoxClipped is Box with the edges of the box clipped against the plane
// z = near in the camera frame before the rectangle is taken. Boxes with
// no part beyond near are not visible.
func BoxClipped(obj label.Object, set *calib.Set, p pose.Pose, near float64) ProjectedBox {
	b := Box(obj, set, p)

	corners := obj.Corners()
	cam := make([]r3.Vector, len(corners))
	chain := cameraChain(set, p)
	for i, c := range corners {
		cam[i] = apply(chain, c)
	}

	var kept []r3.Vector
	for _, c := range cam {
		if c.Z >= near {
			kept = append(kept, c)
		}
	}
	for _, e := range label.Edges {
		a, c := cam[e[0]], cam[e[1]]
		if (a.Z < near) == (c.Z < near) {
			continue
		}
		t := (near - a.Z) / (c.Z - a.Z)
		kept = append(kept, a.Add(c.Sub(a).Mul(t)))
	}

	b.Visible = len(kept) > 0
	b.Rect = Rect{}
	if b.Visible {
		proj := set.Projection()
		img := make([]r2.Point, len(kept))
		for i, c := range kept {
			h := apply(proj, c)
			img[i] = r2.Point{X: h.X / h.Z, Y: h.Y / h.Z}
		}
		b.Rect, b.Visible = bounds(img)
	}
	return b
}

func apply(m mat.Matrix, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z + m.At(0, 3),
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z + m.At(1, 3),
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z + m.At(2, 3),
	}
}

// bounds spans the finite points of pts. Corners lying in the camera
// plane project to NaN or Inf and are left out; ok is false when no
// finite point remains.
func bounds(pts []r2.Point) (r Rect, ok bool) {
	r = Rect{
		XMin: math.Inf(1), YMin: math.Inf(1),
		XMax: math.Inf(-1), YMax: math.Inf(-1),
	}
	for _, p := range pts {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		ok = true
		r.XMin = math.Min(r.XMin, p.X)
		r.YMin = math.Min(r.YMin, p.Y)
		r.XMax = math.Max(r.XMax, p.X)
		r.YMax = math.Max(r.YMax, p.Y)
	}
	if !ok {
		return Rect{}, false
	}
	return r, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
