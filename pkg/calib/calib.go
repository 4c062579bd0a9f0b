// Package calib reads KITTI per-frame calibration records and exposes the
// camera/LiDAR matrices in 4x4 homogeneous form.
package calib

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Record keys.
const (
	KeyProjection     = "P2"
	KeyRectification  = "R0_rect"
	KeySensorToCamera = "Tr_velo_to_cam"
)

// MissingKeyError reports a required matrix absent from the record.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("calibration: missing key %q", e.Key)
}

// MalformedError reports a matrix whose values do not fit its shape.
type MalformedError struct {
	Key  string
	Want int
	Got  int
	Err  error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calibration: key %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("calibration: key %q has %d values, want %d", e.Key, e.Got, e.Want)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Set holds the lifted matrices of one recording. The matrices are never
// handed out directly, so a Set can be shared by concurrent readers.
type Set struct {
	sensorToCamera *mat.Dense
	rectification  *mat.Dense
	projection     *mat.Dense
	cameras        map[string]*mat.Dense
	raw            map[string][]float64
}

// Parse reads a calibration record of "KEY: v0 v1 ..." lines.
func Parse(r io.Reader) (*Set, error) {
	raw := map[string][]float64{}
	malformed := map[string]error{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		fields := strings.Fields(value)
		vals := make([]float64, 0, len(fields))
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				malformed[key] = err
				break
			}
			vals = append(vals, v)
		}
		raw[key] = vals
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read calibration")
	}

	get := func(key string, rows, cols int) (*mat.Dense, error) {
		vals, ok := raw[key]
		if !ok {
			return nil, &MissingKeyError{Key: key}
		}
		if err := malformed[key]; err != nil {
			return nil, &MalformedError{Key: key, Want: rows * cols, Got: len(vals), Err: err}
		}
		if len(vals) != rows*cols {
			return nil, &MalformedError{Key: key, Want: rows * cols, Got: len(vals)}
		}
		return mat.NewDense(rows, cols, append([]float64(nil), vals...)), nil
	}

	p2, err := get(KeyProjection, 3, 4)
	if err != nil {
		return nil, err
	}
	r0, err := get(KeyRectification, 3, 3)
	if err != nil {
		return nil, err
	}
	tr, err := get(KeySensorToCamera, 3, 4)
	if err != nil {
		return nil, err
	}

	s := &Set{
		sensorToCamera: liftAffine(tr),
		rectification:  embedRotation(r0),
		projection:     liftAffine(p2),
		cameras:        map[string]*mat.Dense{},
		raw:            raw,
	}
	for _, name := range []string{"P0", "P1", "P2", "P3"} {
		if m, err := get(name, 3, 4); err == nil {
			s.cameras[name] = liftAffine(m)
		}
	}
	return s, nil
}

// Load parses the calibration file at path.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open calibration %s", path)
	}
	defer f.Close()
	s, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse calibration %s", path)
	}
	return s, nil
}

// SensorToCamera is Tr_velo_to_cam with a [0 0 0 1] row appended.
func (s *Set) SensorToCamera() *mat.Dense { return mat.DenseCopyOf(s.sensorToCamera) }

// Rectification is R0_rect embedded in the top-left block of a 4x4 identity.
func (s *Set) Rectification() *mat.Dense { return mat.DenseCopyOf(s.rectification) }

// Projection is P2 with a [0 0 0 1] row appended.
func (s *Set) Projection() *mat.Dense { return mat.DenseCopyOf(s.projection) }

// Raw returns a copy of the values stored under key, including keys the
// projection chain does not use (Tr_imu_to_velo, P0...).
func (s *Set) Raw(key string) ([]float64, bool) {
	v, ok := s.raw[key]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), v...), true
}

// Camera returns the lifted projection matrix of another KITTI camera
// (P0..P3). The empty name selects P2.
func (s *Set) Camera(name string) (*mat.Dense, error) {
	if name == "" {
		name = KeyProjection
	}
	m, ok := s.cameras[name]
	if !ok {
		return nil, &MissingKeyError{Key: name}
	}
	return mat.DenseCopyOf(m), nil
}

// WithCamera returns a copy of s that projects through the named camera.
func (s *Set) WithCamera(name string) (*Set, error) {
	m, err := s.Camera(name)
	if err != nil {
		return nil, err
	}
	c := *s
	c.projection = m
	return &c, nil
}

// New builds a Set from already-lifted 4x4 matrices.
func New(sensorToCamera, rectification, projection mat.Matrix) *Set {
	return &Set{
		sensorToCamera: mat.DenseCopyOf(sensorToCamera),
		rectification:  mat.DenseCopyOf(rectification),
		projection:     mat.DenseCopyOf(projection),
		cameras:        map[string]*mat.Dense{KeyProjection: mat.DenseCopyOf(projection)},
		raw:            map[string][]float64{},
	}
}

func liftAffine(m *mat.Dense) *mat.Dense {
	h := mat.NewDense(4, 4, nil)
	h.Slice(0, 3, 0, 4).(*mat.Dense).Copy(m)
	h.Set(3, 3, 1)
	return h
}

func embedRotation(m *mat.Dense) *mat.Dense {
	h := identity()
	h.Slice(0, 3, 0, 3).(*mat.Dense).Copy(m)
	return h
}

func identity() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}
