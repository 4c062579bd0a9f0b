// Package project pushes LiDAR points and labelled boxes through the
// calibration chain
//
//	image = P · R0 · pose · Tr · point
//
// and derives image-plane rectangles from projected boxes.
package project

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"kittiaug/pkg/calib"
	"kittiaug/pkg/pcd"
	"kittiaug/pkg/pose"
)

// Projected holds image coordinates and depths of a batch of points.
// Depth is the rectified camera z before the perspective divide; image
// coordinates of points with depth <= 0 are meaningless and may be NaN or
// Inf.
type Projected struct {
	Points []r2.Point
	Depths []float64
	// Intensity is copied from the LiDAR input, nil for camera points.
	Intensity []float32
}

// Pixel is one masked LiDAR projection.
type Pixel struct {
	U, V      float64
	Depth     float64
	Intensity float32
}

func (p Projected) Len() int { return len(p.Points) }

// Visible returns the indexes of points in front of the camera and inside
// a width x height image.
func (p Projected) Visible(width, height int) []int {
	var idx []int
	for i, pt := range p.Points {
		if p.Depths[i] <= 0 {
			continue
		}
		if pt.X < 0 || pt.Y < 0 || pt.X >= float64(width) || pt.Y >= float64(height) {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

// Masked returns the pixels selected by Visible.
func (p Projected) Masked(width, height int) []Pixel {
	idx := p.Visible(width, height)
	out := make([]Pixel, 0, len(idx))
	for _, i := range idx {
		px := Pixel{U: p.Points[i].X, V: p.Points[i].Y, Depth: p.Depths[i]}
		if p.Intensity != nil {
			px.Intensity = p.Intensity[i]
		}
		out = append(out, px)
	}
	return out
}

// Points projects LiDAR points through the full chain.
func Points(points []pcd.Point, set *calib.Set, p pose.Pose) Projected {
	n := len(points)
	out := Projected{
		Points:    make([]r2.Point, n),
		Depths:    make([]float64, n),
		Intensity: make([]float32, n),
	}
	if n == 0 {
		return out
	}
	h := mat.NewDense(4, n, nil)
	for i, pt := range points {
		h.Set(0, i, float64(pt.X))
		h.Set(1, i, float64(pt.Y))
		h.Set(2, i, float64(pt.Z))
		h.Set(3, i, 1)
		out.Intensity[i] = pt.R
	}
	var toCam mat.Dense
	toCam.Mul(cameraChain(set, p), set.SensorToCamera())
	divide(h, &toCam, set.Projection(), &out)
	return out
}

// CameraPoints projects points already expressed in the camera frame, the
// frame KITTI labels are given in. The sensor-to-camera stage is skipped.
func CameraPoints(points []r3.Vector, set *calib.Set, p pose.Pose) Projected {
	n := len(points)
	out := Projected{
		Points: make([]r2.Point, n),
		Depths: make([]float64, n),
	}
	if n == 0 {
		return out
	}
	h := mat.NewDense(4, n, nil)
	for i, pt := range points {
		h.Set(0, i, pt.X)
		h.Set(1, i, pt.Y)
		h.Set(2, i, pt.Z)
		h.Set(3, i, 1)
	}
	divide(h, cameraChain(set, p), set.Projection(), &out)
	return out
}

// ToCamera maps LiDAR points into the rectified camera frame of the real
// camera, where label boxes live.
func ToCamera(points []pcd.Point, set *calib.Set) []r3.Vector {
	var m mat.Dense
	m.Mul(set.Rectification(), set.SensorToCamera())
	out := make([]r3.Vector, len(points))
	for i, pt := range points {
		x, y, z := float64(pt.X), float64(pt.Y), float64(pt.Z)
		out[i] = r3.Vector{
			X: m.At(0, 0)*x + m.At(0, 1)*y + m.At(0, 2)*z + m.At(0, 3),
			Y: m.At(1, 0)*x + m.At(1, 1)*y + m.At(1, 2)*z + m.At(1, 3),
			Z: m.At(2, 0)*x + m.At(2, 1)*y + m.At(2, 2)*z + m.At(2, 3),
		}
	}
	return out
}

// cameraChain is R0 · pose.
func cameraChain(set *calib.Set, p pose.Pose) *mat.Dense {
	var m mat.Dense
	m.Mul(set.Rectification(), p.Matrix())
	return &m
}

// divide applies toCam then proj to the homogeneous columns of h and fills
// out with (u/w, v/w) and the camera depth.
func divide(h *mat.Dense, toCam, proj mat.Matrix, out *Projected) {
	var cam, img mat.Dense
	cam.Mul(toCam, h)
	img.Mul(proj, &cam)
	for i := range out.Points {
		w := img.At(2, i)
		out.Points[i] = r2.Point{X: img.At(0, i) / w, Y: img.At(1, i) / w}
		out.Depths[i] = cam.At(2, i)
	}
}
