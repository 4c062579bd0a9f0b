// Package synth turns one KITTI frame into 2D annotations for a list of
// virtual camera poses.
package synth

import (
	"kittiaug/pkg/calib"
	"kittiaug/pkg/label"
	"kittiaug/pkg/pcd"
	"kittiaug/pkg/pose"
	"kittiaug/pkg/project"
)

// Frame is everything a single recording frame contributes. A Frame is
// read-only once built.
type Frame struct {
	ID     string
	Calib  *calib.Set
	Labels []label.Object
	Points []pcd.Point
}

// Options tune Synthesize. The zero value reproduces the plain pipeline.
type Options struct {
	// IncludeLidar keeps the projected LiDAR cloud in each FrameAnnotation.
	IncludeLidar bool
	// ClipNear clips boxes against the near plane before taking their
	// rectangle.
	ClipNear  bool
	NearPlane float64
	// MinLidarPoints drops objects supported by fewer LiDAR returns.
	MinLidarPoints int
}

// Annotation is one emitted object.
type Annotation struct {
	Type        string
	Rect        project.Rect
	MinDepth    float64
	MaxDepth    float64
	LidarPoints int
	Box         project.ProjectedBox
}

// FrameAnnotation is the output of one (frame, pose) pair.
type FrameAnnotation struct {
	FrameID   string
	PoseIndex int
	Pose      pose.Pose
	Objects   []Annotation
	Lidar     project.Projected
}

// Synthesize projects f under each pose. Objects keep label order; boxes
// wholly behind the camera are left out.
func Synthesize(f Frame, poses []pose.Pose, opts Options) []FrameAnnotation {
	var support []int
	if opts.MinLidarPoints > 0 {
		support = countSupport(f)
	}
	near := opts.NearPlane
	if near <= 0 {
		near = project.DefaultNearPlane
	}

	out := make([]FrameAnnotation, 0, len(poses))
	for i, p := range poses {
		fa := FrameAnnotation{
			FrameID:   f.ID,
			PoseIndex: i,
			Pose:      p,
		}
		if opts.IncludeLidar {
			fa.Lidar = project.Points(f.Points, f.Calib, p)
		}
		for j, obj := range f.Labels {
			if support != nil && support[j] < opts.MinLidarPoints {
				continue
			}
			var b project.ProjectedBox
			if opts.ClipNear {
				b = project.BoxClipped(obj, f.Calib, p, near)
			} else {
				b = project.Box(obj, f.Calib, p)
			}
			if !b.Visible {
				continue
			}
			a := Annotation{
				Type:     obj.Type,
				Rect:     b.Rect,
				MinDepth: b.MinDepth(),
				MaxDepth: b.MaxDepth(),
				Box:      b,
			}
			if support != nil {
				a.LidarPoints = support[j]
			}
			fa.Objects = append(fa.Objects, a)
		}
		out = append(out, fa)
	}
	return out
}

// countSupport counts the LiDAR returns inside each label box. Support
// does not depend on the virtual pose.
func countSupport(f Frame) []int {
	counts := make([]int, len(f.Labels))
	if len(f.Labels) == 0 || len(f.Points) == 0 {
		return counts
	}
	cam := project.ToCamera(f.Points, f.Calib)
	for j, obj := range f.Labels {
		for _, p := range cam {
			if obj.Contains(p) {
				counts[j]++
			}
		}
	}
	return counts
}
