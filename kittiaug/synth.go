package main

import (
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"kittiaug/pkg/kitti"
	"kittiaug/pkg/render"
	"kittiaug/pkg/synth"
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Write one YOLO dataset per virtual pose",
	RunE: func(cmd *cobra.Command, args []string) error {
		poses, err := loadPoses()
		if err != nil {
			return err
		}
		ds := &kitti.Dataset{Root: cfg.kitti, Camera: cfg.camera}
		// LiDAR is only needed for previews and support counting
		ds.SkipLidar = !cfg.render && cfg.minLidar <= 0

		ids, err := frameIDs(ds, cfg.first, cfg.frames)
		if err != nil {
			return err
		}

		w := &kitti.Writer{Out: cfg.out, Size: ds.ImageSize, ClipToImage: cfg.clipImage}
		if cfg.render {
			w.Render = &render.Options{Wireframe: cfg.wireframe}
		}
		bar := progressbar.Default(int64(len(ids)), "frames")
		r := &synth.Runner{
			Source: ds,
			Sink:   w,
			Poses:  poses,
			Options: synth.Options{
				IncludeLidar:   cfg.render,
				ClipNear:       cfg.clipNear,
				NearPlane:      cfg.near,
				MinLidarPoints: cfg.minLidar,
			},
			Workers:   cfg.workers,
			KeepGoing: cfg.keepGoing,
			Logger:    log,
			Progress:  func() { _ = bar.Add(1) },
		}
		log.Infow("synthesizing", "frames", len(ids), "poses", len(poses), "out", cfg.out)
		sum, err := r.Run(cmd.Context(), ids)
		_ = bar.Finish()
		log.Infow("done", "frames", sum.Frames, "skipped", sum.Skipped, "objects", sum.Objects)
		if err != nil {
			log.Errorw("synthesis failed", "error", err)
		}
		return err
	},
}

func init() {
	synthCmd.Flags().IntVarP(&cfg.frames, "frames", "n", 0, "number of frames to process (0 = all)")
	synthCmd.Flags().IntVar(&cfg.first, "first", 0, "index of the first frame")
	synthCmd.Flags().IntVarP(&cfg.workers, "workers", "j", 0, "frames processed in parallel (0 = GOMAXPROCS)")
	synthCmd.Flags().BoolVar(&cfg.keepGoing, "keep-going", false, "skip frames that fail to load")
	synthCmd.Flags().IntVar(&cfg.minLidar, "min-lidar-points", 0, "drop objects with fewer LiDAR returns inside their box")
	synthCmd.Flags().BoolVar(&cfg.clipImage, "clip-image", false, "clip rectangles to the image bounds")
	synthCmd.Flags().BoolVar(&cfg.render, "render", false, "render a preview image per frame and pose")
}

// frameIDs picks n ids starting at index first; with n == 0 every frame
// found under calib/ from first on is used.
func frameIDs(ds *kitti.Dataset, first, n int) ([]string, error) {
	if first < 0 {
		return nil, errors.Errorf("--first %d is negative", first)
	}
	if n > 0 {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = kitti.FrameID(first + i)
		}
		return ids, nil
	}
	ids, err := ds.IDs()
	if err != nil {
		return nil, err
	}
	if first >= len(ids) {
		return nil, errors.Errorf("--first %d is past the last of %d frames", first, len(ids))
	}
	return ids[first:], nil
}
