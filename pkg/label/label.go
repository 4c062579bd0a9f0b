// Package label reads KITTI object label files and builds the oriented 3D
// box of each object in the rectified camera frame.
package label

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// IgnoreType marks regions the annotators left unlabelled.
const IgnoreType = "DontCare"

// MinFields is the number of columns of a KITTI label line (the score
// column of detection results is optional).
const MinFields = 15

// MalformedLineError reports a label line that cannot be parsed.
type MalformedLineError struct {
	Line   int
	Reason string
	Err    error
}

func (e *MalformedLineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("label line %d: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("label line %d: %s", e.Line, e.Reason)
}

func (e *MalformedLineError) Unwrap() error { return e.Err }

// Dimensions are the box height, width and length in metres.
type Dimensions struct {
	H, W, L float64
}

// Object is one labelled object.
type Object struct {
	Type      string
	Truncated float64
	Occluded  int
	Alpha     float64
	// BBox is the annotated 2D box of the real camera (left, top, right, bottom).
	BBox       [4]float64
	Dimensions Dimensions
	// Location is the bottom-face centre in camera coordinates.
	Location  r3.Vector
	RotationY float64
}

// Parse reads every object of a label record, skipping IgnoreType lines.
func Parse(r io.Reader) ([]Object, error) {
	var objs []Object
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		obj, err := ParseLine(line)
		if err != nil {
			if le, ok := err.(*MalformedLineError); ok {
				le.Line = n
			}
			return nil, err
		}
		if obj.Type == IgnoreType {
			continue
		}
		objs = append(objs, obj)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read labels")
	}
	return objs, nil
}

// ParseLine parses a single label line.
func ParseLine(line string) (Object, error) {
	f := strings.Fields(line)
	if len(f) > 0 && f[0] == IgnoreType {
		return Object{Type: IgnoreType}, nil
	}
	if len(f) < MinFields {
		return Object{}, &MalformedLineError{Reason: fmt.Sprintf("%d fields, want %d", len(f), MinFields)}
	}
	var v [MinFields]float64
	for i := 1; i < MinFields; i++ {
		x, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return Object{}, &MalformedLineError{Reason: fmt.Sprintf("field %d", i), Err: err}
		}
		v[i] = x
	}
	return Object{
		Type:       f[0],
		Truncated:  v[1],
		Occluded:   int(v[2]),
		Alpha:      v[3],
		BBox:       [4]float64{v[4], v[5], v[6], v[7]},
		Dimensions: Dimensions{H: v[8], W: v[9], L: v[10]},
		Location:   r3.Vector{X: v[11], Y: v[12], Z: v[13]},
		RotationY:  v[14],
	}, nil
}

// Load parses the label file at path.
func Load(path string) ([]Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open labels %s", path)
	}
	defer f.Close()
	objs, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse labels %s", path)
	}
	return objs, nil
}

// Edges are the 12 corner index pairs of a box in Corners order.
var Edges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0}, // bottom
	{4, 5}, {5, 6}, {6, 7}, {7, 4}, // top
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // sides
}

var (
	cornerX = [8]float64{1, 1, -1, -1, 1, 1, -1, -1}
	cornerY = [8]float64{0, 0, 0, 0, -1, -1, -1, -1}
	cornerZ = [8]float64{1, -1, -1, 1, 1, -1, -1, 1}
)

// Corners returns the 8 box corners: the bottom face first, starting at
// the front-right corner, then the top face in the same order.
func (o Object) Corners() [8]r3.Vector {
	d := o.Dimensions
	s, c := math.Sincos(o.RotationY)
	var out [8]r3.Vector
	for i := range out {
		x := cornerX[i] * d.L / 2
		y := cornerY[i] * d.H
		z := cornerZ[i] * d.W / 2
		out[i] = r3.Vector{
			X: c*x + s*z,
			Y: y,
			Z: -s*x + c*z,
		}.Add(o.Location)
	}
	return out
}

// Contains reports whether p (camera frame) lies inside the box.
func (o Object) Contains(p r3.Vector) bool {
	d := p.Sub(o.Location)
	// undo the heading
	s, c := math.Sincos(o.RotationY)
	x := c*d.X - s*d.Z
	z := s*d.X + c*d.Z
	return math.Abs(x) <= o.Dimensions.L/2 &&
		math.Abs(z) <= o.Dimensions.W/2 &&
		d.Y <= 0 && d.Y >= -o.Dimensions.H
}
