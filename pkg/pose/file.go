package pose

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the on-disk pose list:
//
//	poses:
//	  - yaw: -45
//	  - {}
//	  - yaw: 45
//	    tx: 2
type File struct {
	Poses []Pose `yaml:"poses"`
}

// DefaultSweep is the yaw sweep used when no poses are configured.
var DefaultSweep = []Pose{{Yaw: -45}, {}, {Yaw: 45}}

// LoadFile reads a YAML pose list.
func LoadFile(path string) ([]Pose, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read pose file %s", path)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parse pose file %s", path)
	}
	if len(f.Poses) == 0 {
		return nil, errors.Errorf("pose file %s: no poses", path)
	}
	return f.Poses, nil
}

// ParseList parses "yaw,pitch,roll,tx,ty,tz". Trailing values may be
// omitted and default to zero.
func ParseList(s string) (Pose, error) {
	var v [6]float64
	parts := strings.Split(s, ",")
	if len(parts) > len(v) {
		return Pose{}, errors.Errorf("pose %q: at most 6 values", s)
	}
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return Pose{}, errors.Wrapf(err, "pose %q", s)
		}
		v[i] = f
	}
	return Pose{Yaw: v[0], Pitch: v[1], Roll: v[2], TX: v[3], TY: v[4], TZ: v[5]}, nil
}
