package main

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kittiaug/pkg/pcd"
)

var cfg struct {
	in      string
	out     string
	reverse bool
}

var log = zap.NewExample().Sugar()

var cmd = &cobra.Command{
	Use:   "bin-to-pcd",
	Short: "Convert KITTI velodyne scans between .bin and .pcd",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		if strings.HasSuffix(cfg.in, ".zip") {
			return tranZipFile()
		}
		return tranDir()
	},
}

func init() {
	cmd.PersistentFlags().StringVarP(&cfg.in, "in", "i", "", "input zipFile or dir")
	cmd.PersistentFlags().StringVarP(&cfg.out, "out", "o", "", "output zipFile or dir")
	cmd.PersistentFlags().BoolVarP(&cfg.reverse, "reverse", "r", false, "convert .pcd back to .bin")

	cmd.MarkPersistentFlagRequired("in")
}

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func exts() (from, to string) {
	if cfg.reverse {
		return ".pcd", ".bin"
	}
	return ".bin", ".pcd"
}

// convert decodes one scan from r and writes it to w in the target
// format. It returns the number of points converted.
func convert(name string, r io.Reader, w io.Writer) (int, error) {
	pc, err := pcd.Decode(name, r)
	if err != nil {
		return 0, err
	}
	if cfg.reverse {
		err = (&pcd.Bin{PointCloud: *pc}).Encode(w)
	} else {
		err = (&pcd.Pcd{PointCloud: *pc}).Encode(w)
	}
	return pc.PointCount(), err
}

func tranDir() (err error) {
	if cfg.out == "" {
		cfg.out = cfg.in
	}
	return TransDir(cfg.in, cfg.out)
}

func tranZipFile() (err error) {
	if cfg.out == "" {
		base := filepath.Base(cfg.in)
		ext := filepath.Ext(base)
		_, to := exts()
		cfg.out = strings.TrimSuffix(base, ext) + "-" + strings.TrimPrefix(to, ".") + ext
	}
	if cfg.out == cfg.in {
		return errors.New("input file can not sample as output file")
	}
	outFile, err := os.Create(cfg.out)
	if err != nil {
		return err
	}
	defer outFile.Close()
	outZip := zip.NewWriter(outFile)
	defer outZip.Close()
	inZip, err := zip.OpenReader(cfg.in)
	if err != nil {
		return err
	}
	defer inZip.Close()
	from, to := exts()
	for _, f := range inZip.File {
		if filepath.Ext(f.Name) == from {
			err = func() (err error) {
				r, err := f.Open()
				if err != nil {
					return err
				}
				defer r.Close()
				w, err := outZip.Create(strings.TrimSuffix(f.Name, from) + to)
				if err != nil {
					return
				}
				n, err := convert(f.Name, r, w)
				if err == nil {
					log.Infow("converted", "src", f.Name, "points", n)
				}
				return err
			}()
			if err != nil {
				return pkgerrors.Wrapf(err, "convert %s", f.Name)
			}
			continue
		}
		w, err := outZip.CreateRaw(&f.FileHeader)
		if err != nil {
			return err
		}
		r, err := f.OpenRaw()
		if err != nil {
			return err
		}
		if _, err = io.Copy(w, r); err != nil {
			return err
		}
	}
	return
}

func TransDir(sourceDir, outDir string) (err error) {
	ds, err := os.ReadDir(sourceDir)
	if err != nil {
		return err
	}
	from, to := exts()
	for _, d := range ds {
		fn := d.Name()
		if filepath.Ext(fn) != from {
			continue
		}
		src := filepath.Join(sourceDir, fn)
		out := filepath.Join(outDir, strings.TrimSuffix(fn, from)+to)
		n, err := transFile(src, out)
		if err != nil {
			return pkgerrors.Wrapf(err, "convert %s", src)
		}
		log.Infow("converted", "src", src, "out", out, "points", n)
	}
	return
}

func transFile(src, out string) (int, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	o, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	n, err := convert(src, in, o)
	if err != nil {
		o.Close()
		return 0, err
	}
	return n, o.Close()
}
