package kitti

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"kittiaug/pkg/pose"
	"kittiaug/pkg/render"
	"kittiaug/pkg/synth"
	"kittiaug/pkg/yolo"
)

// Writer lays out one dataset per pose:
//
//	<Out>/dataset_<i>/DatasetInfo.md
//	<Out>/dataset_<i>/labels/<id>.txt
//	<Out>/dataset_<i>/images/<id>.png   (when Render is set)
type Writer struct {
	Out string
	// Size returns the image size of a frame.
	Size func(id string) (width, height int)
	// ClipToImage clips rectangles to the image and drops objects that
	// fall outside it.
	ClipToImage bool
	// Render, if set, draws a preview image per frame and pose.
	Render *render.Options

	mu       sync.Mutex
	prepared map[int]bool
}

// DatasetDir is the directory of the dataset generated for pose i.
func (w *Writer) DatasetDir(i int) string {
	return filepath.Join(w.Out, fmt.Sprintf("dataset_%d", i))
}

func (w *Writer) Write(f synth.Frame, anns []synth.FrameAnnotation) error {
	width, height := DefaultWidth, DefaultHeight
	if w.Size != nil {
		width, height = w.Size(f.ID)
	}
	for _, a := range anns {
		dir := w.DatasetDir(a.PoseIndex)
		if err := w.prepare(a.PoseIndex, a.Pose); err != nil {
			return err
		}

		var lines []yolo.Line
		for _, o := range a.Objects {
			r := o.Rect
			if w.ClipToImage {
				var ok bool
				if r, ok = r.Intersect(width, height); !ok {
					continue
				}
			}
			lines = append(lines, yolo.FromRect(o.Type, r, width, height))
		}
		if err := writeLabels(filepath.Join(dir, "labels", f.ID+".txt"), lines); err != nil {
			return err
		}

		if w.Render != nil {
			path := filepath.Join(dir, "images", f.ID+".png")
			if err := render.Save(path, a, width, height, *w.Render); err != nil {
				return errors.Wrapf(err, "render %s", path)
			}
		}
	}
	return nil
}

func (w *Writer) prepare(i int, p pose.Pose) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.prepared[i] {
		return nil
	}
	dir := w.DatasetDir(i)
	for _, sub := range []string{"images", "labels"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return errors.Wrap(err, "create dataset dir")
		}
	}
	info := filepath.Join(dir, "DatasetInfo.md")
	if _, err := os.Stat(info); os.IsNotExist(err) {
		body := fmt.Sprintf("# Dataset %d\n\nyaw_angle: %g, pitch_angle: %g, roll_angle: %g\n\ntx: %g, ty: %g, tz: %g\n",
			i, p.Yaw, p.Pitch, p.Roll, p.TX, p.TY, p.TZ)
		if err := os.WriteFile(info, []byte(body), 0o644); err != nil {
			return errors.Wrap(err, "write dataset info")
		}
	}
	if w.prepared == nil {
		w.prepared = map[int]bool{}
	}
	w.prepared[i] = true
	return nil
}

func writeLabels(path string, lines []yolo.Line) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create label file")
	}
	if err := yolo.Write(f, lines); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}
