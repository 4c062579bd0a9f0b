package synth

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kittiaug/pkg/pose"
)

// Source loads frames by id.
type Source interface {
	Frame(id string) (Frame, error)
}

// Sink receives the annotations of one frame. Runner calls it from
// several goroutines at once.
type Sink interface {
	Write(f Frame, anns []FrameAnnotation) error
}

// Summary counts what a Run did.
type Summary struct {
	Frames  int
	Skipped int
	Objects int
}

// Runner synthesizes a batch of frames in parallel.
type Runner struct {
	Source  Source
	Sink    Sink
	Poses   []pose.Pose
	Options Options
	// Workers bounds concurrent frames; <= 0 means GOMAXPROCS.
	Workers int
	// KeepGoing logs and skips frames that fail instead of stopping.
	KeepGoing bool
	Logger    *zap.SugaredLogger
	// Progress, if set, is called once per finished or skipped frame.
	Progress func()
}

// Run processes ids. Cancelling ctx stops the batch between frames.
func (r *Runner) Run(ctx context.Context, ids []string) (Summary, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		frames, skipped, objects atomic.Int64
		mu                       sync.Mutex
		errs                     error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := r.one(id)
			if r.Progress != nil {
				r.Progress()
			}
			if err != nil {
				err = errors.Wrapf(err, "frame %s", id)
				if !r.KeepGoing {
					return err
				}
				log.Warnw("skipping frame", "frame", id, "error", err)
				skipped.Add(1)
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				return nil
			}
			frames.Add(1)
			objects.Add(int64(n))
			log.Debugw("frame done", "frame", id, "objects", n)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	sum := Summary{
		Frames:  int(frames.Load()),
		Skipped: int(skipped.Load()),
		Objects: int(objects.Load()),
	}
	if err != nil {
		return sum, err
	}
	return sum, errs
}

func (r *Runner) one(id string) (int, error) {
	f, err := r.Source.Frame(id)
	if err != nil {
		return 0, err
	}
	anns := Synthesize(f, r.Poses, r.Options)
	n := 0
	for _, a := range anns {
		n += len(a.Objects)
	}
	if r.Sink != nil {
		if err := r.Sink.Write(f, anns); err != nil {
			return 0, err
		}
	}
	return n, nil
}
