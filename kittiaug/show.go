package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"kittiaug/pkg/kitti"
	"kittiaug/pkg/render"
	"kittiaug/pkg/synth"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render every pose of a single frame and log its rectangles",
	RunE: func(cmd *cobra.Command, args []string) error {
		poses, err := loadPoses()
		if err != nil {
			return err
		}
		ds := &kitti.Dataset{Root: cfg.kitti, Camera: cfg.camera}
		f, err := ds.Frame(cfg.frame)
		if err != nil {
			return err
		}
		width, height := ds.ImageSize(f.ID)
		anns := synth.Synthesize(f, poses, synth.Options{
			IncludeLidar: true,
			ClipNear:     cfg.clipNear,
			NearPlane:    cfg.near,
		})
		if err := os.MkdirAll(cfg.out, 0o755); err != nil {
			return errors.Wrap(err, "create output dir")
		}
		for _, a := range anns {
			for _, o := range a.Objects {
				log.Infow("object", "pose", a.Pose.String(), "type", o.Type,
					"xmin", o.Rect.XMin, "ymin", o.Rect.YMin, "xmax", o.Rect.XMax, "ymax", o.Rect.YMax,
					"depth", o.MinDepth)
			}
			path := filepath.Join(cfg.out, fmt.Sprintf("%s_pose%d.png", f.ID, a.PoseIndex))
			if err := render.Save(path, a, width, height, render.Options{Wireframe: cfg.wireframe}); err != nil {
				return errors.Wrapf(err, "render %s", path)
			}
			log.Infow("rendered", "pose", a.Pose.String(), "path", path, "points", len(a.Lidar.Visible(width, height)))
		}
		return nil
	},
}

func init() {
	showCmd.Flags().StringVarP(&cfg.frame, "frame", "f", "000000", "frame id")
}
