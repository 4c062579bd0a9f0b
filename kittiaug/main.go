package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kittiaug/pkg/pose"
)

var cfg struct {
	kitti     string
	out       string
	poses     []string
	posesFile string
	camera    string
	verbose   bool

	// synth
	frames    int
	first     int
	workers   int
	keepGoing bool
	clipNear  bool
	near      float64
	minLidar  int
	clipImage bool
	render    bool
	wireframe bool

	// show
	frame string
}

var log *zap.SugaredLogger

var cmd = &cobra.Command{
	Use:   "kittiaug",
	Short: "Build augmented 2D detection datasets from KITTI recordings",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var (
			l   *zap.Logger
			err error
		)
		if cfg.verbose {
			l, err = zap.NewDevelopment()
		} else {
			l, err = zap.NewProduction()
		}
		if err != nil {
			return err
		}
		log = l.Sugar()
		if cfg.kitti == "" {
			return errors.New("no KITTI root: set --kitti or KITTI_PATH")
		}
		return nil
	},
}

func init() {
	cmd.PersistentFlags().StringVarP(&cfg.kitti, "kitti", "k", os.Getenv("KITTI_PATH"), "KITTI object split root (calib/, velodyne/, label_2/, image_2/)")
	cmd.PersistentFlags().StringVarP(&cfg.out, "out", "o", "datasets", "output directory")
	cmd.PersistentFlags().StringArrayVarP(&cfg.poses, "pose", "p", nil, "virtual pose yaw,pitch,roll,tx,ty,tz (repeatable)")
	cmd.PersistentFlags().StringVar(&cfg.posesFile, "poses", "", "YAML file with a pose list")
	cmd.PersistentFlags().StringVar(&cfg.camera, "camera", "", "projection matrix to use (P0..P3, default P2)")
	cmd.PersistentFlags().BoolVarP(&cfg.verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().BoolVar(&cfg.clipNear, "clip-near", false, "clip boxes against the near plane")
	cmd.PersistentFlags().Float64Var(&cfg.near, "near", 0.1, "near plane depth in metres for --clip-near")
	cmd.PersistentFlags().BoolVar(&cfg.wireframe, "wireframe", false, "draw 3D box wireframes in rendered images")

	cmd.AddCommand(synthCmd, showCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := cmd.ExecuteContext(ctx)
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

// loadPoses resolves the pose list from --poses, then --pose, then the
// default yaw sweep.
func loadPoses() ([]pose.Pose, error) {
	if cfg.posesFile != "" {
		return pose.LoadFile(cfg.posesFile)
	}
	if len(cfg.poses) == 0 {
		return pose.DefaultSweep, nil
	}
	out := make([]pose.Pose, 0, len(cfg.poses))
	for _, s := range cfg.poses {
		p, err := pose.ParseList(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
