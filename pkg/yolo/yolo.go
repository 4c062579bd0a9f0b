// Package yolo writes annotations as YOLO text labels.
package yolo

import (
	"bufio"
	"fmt"
	"io"

	"kittiaug/pkg/project"
)

// ClassIDs maps KITTI object types to YOLO class ids. Unknown types map
// to 0.
var ClassIDs = map[string]int{
	"Car":        0,
	"Pedestrian": 1,
	"Cyclist":    2,
	"Truck":      3,
	"Van":        4,
	"Tram":       5,
	"Misc":       6,
}

// ClassID returns the class id of an object type.
func ClassID(typ string) int {
	return ClassIDs[typ]
}

// Line is one YOLO label: centre and size normalised by the image size.
type Line struct {
	Class   int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

func (l Line) String() string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f", l.Class, l.XCenter, l.YCenter, l.Width, l.Height)
}

// FromRect converts a pixel rectangle.
func FromRect(typ string, r project.Rect, width, height int) Line {
	w, h := float64(width), float64(height)
	return Line{
		Class:   ClassID(typ),
		XCenter: (r.XMin + r.XMax) / 2 / w,
		YCenter: (r.YMin + r.YMax) / 2 / h,
		Width:   (r.XMax - r.XMin) / w,
		Height:  (r.YMax - r.YMin) / h,
	}
}

// Write writes one line per label.
func Write(w io.Writer, lines []Line) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := fmt.Fprintln(bw, l.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
