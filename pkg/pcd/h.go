package pcd

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

var (
	ErrUnsupportPointCloudFileType = errors.New("unsupport pointCloud fileType")
)

// Point is one LiDAR return. R carries the reflectance (intensity) untouched.
type Point struct {
	X, Y, Z float32
	R       float32
}

type PointCloud struct {
	Points []Point
}

func (p *PointCloud) AddPoint(pt Point) {
	p.Points = append(p.Points, pt)
}

func (p *PointCloud) PointCount() int {
	return len(p.Points)
}

// Decode reads a point cloud whose encoding is picked from the file
// extension of name (".bin" KITTI velodyne scans or ".pcd").
func Decode(name string, r io.Reader) (*PointCloud, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".bin":
		bin, err := DecodeBin(r)
		if err != nil {
			return nil, err
		}
		return &bin.PointCloud, nil
	case ".pcd":
		p, err := DecodePcd(r)
		if err != nil {
			return nil, err
		}
		return &p.PointCloud, nil
	default:
		return nil, ErrUnsupportPointCloudFileType
	}
}

// Open reads the point cloud stored at path.
func Open(path string) (*PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open point cloud %s", path)
	}
	defer f.Close()
	pc, err := Decode(path, f)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "decode point cloud %s", path)
	}
	return pc, nil
}

// TransFileToPcd converts sourceFile to PCD and writes it to w.
func TransFileToPcd(sourceFile string, w io.Writer) error {
	pc, err := Open(sourceFile)
	if err != nil {
		return err
	}
	return (&Pcd{PointCloud: *pc}).Encode(w)
}
