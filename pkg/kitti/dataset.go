// Package kitti maps frame ids onto the KITTI object directory layout and
// writes augmented datasets back to disk.
package kitti

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"kittiaug/pkg/calib"
	"kittiaug/pkg/label"
	"kittiaug/pkg/pcd"
	"kittiaug/pkg/synth"
)

// Default image size of the KITTI color cameras.
const (
	DefaultWidth  = 1242
	DefaultHeight = 375
)

// Dataset is a KITTI object split rooted at Root:
//
//	calib/<id>.txt  velodyne/<id>.bin  label_2/<id>.txt  image_2/<id>.png
type Dataset struct {
	Root string
	// Camera selects the projection matrix (P0..P3); empty means P2.
	Camera string
	// SkipLidar leaves Frame.Points empty.
	SkipLidar bool
}

// FrameID formats a frame index the way KITTI names files.
func FrameID(i int) string {
	return fmt.Sprintf("%06d", i)
}

func (d *Dataset) CalibPath(id string) string {
	return filepath.Join(d.Root, "calib", id+".txt")
}

func (d *Dataset) VelodynePath(id string) string {
	return filepath.Join(d.Root, "velodyne", id+".bin")
}

func (d *Dataset) LabelPath(id string) string {
	return filepath.Join(d.Root, "label_2", id+".txt")
}

func (d *Dataset) ImagePath(id string) string {
	return filepath.Join(d.Root, "image_2", id+".png")
}

// IDs lists the frames that have a calibration file, in order.
func (d *Dataset) IDs() ([]string, error) {
	ents, err := os.ReadDir(filepath.Join(d.Root, "calib"))
	if err != nil {
		return nil, errors.Wrap(err, "list frames")
	}
	var ids []string
	for _, e := range ents {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".txt"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Frame loads calibration, labels and (unless SkipLidar) the LiDAR scan
// of id.
func (d *Dataset) Frame(id string) (synth.Frame, error) {
	cs, err := calib.Load(d.CalibPath(id))
	if err != nil {
		return synth.Frame{}, err
	}
	if d.Camera != "" {
		if cs, err = cs.WithCamera(d.Camera); err != nil {
			return synth.Frame{}, err
		}
	}
	objs, err := label.Load(d.LabelPath(id))
	if err != nil {
		return synth.Frame{}, err
	}
	f := synth.Frame{ID: id, Calib: cs, Labels: objs}
	if !d.SkipLidar {
		pc, err := pcd.Open(d.VelodynePath(id))
		if err != nil {
			return synth.Frame{}, err
		}
		f.Points = pc.Points
	}
	return f, nil
}

// ImageSize reads the size of the camera image of id, falling back to
// the KITTI default when the image is missing.
func (d *Dataset) ImageSize(id string) (width, height int) {
	f, err := os.Open(d.ImagePath(id))
	if err != nil {
		return DefaultWidth, DefaultHeight
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return DefaultWidth, DefaultHeight
	}
	return cfg.Width, cfg.Height
}
