// pcdmeta answers synthesis requests over stdin/stdout, one JSON object
// per request, so other processes can reuse the projection pipeline.
//
//	{"calib": "calib/000000.txt", "labels": "label_2/000000.txt", "poses": [{"yaw": 45}]}
package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"kittiaug/pkg/calib"
	"kittiaug/pkg/label"
	"kittiaug/pkg/pcd"
	"kittiaug/pkg/pose"
	"kittiaug/pkg/project"
	"kittiaug/pkg/synth"
)

type Request struct {
	Calib          string      `json:"calib"`
	Labels         string      `json:"labels"`
	Velodyne       string      `json:"velodyne,omitempty"`
	Poses          []pose.Pose `json:"poses"`
	ClipNear       bool        `json:"clip_near,omitempty"`
	MinLidarPoints int         `json:"min_lidar_points,omitempty"`
}

type Object struct {
	Type        string       `json:"type"`
	Rect        project.Rect `json:"rect"`
	MinDepth    float64      `json:"min_depth"`
	LidarPoints int          `json:"lidar_points,omitempty"`
}

type Result struct {
	Error string     `json:"error,omitempty"`
	Poses [][]Object `json:"poses,omitempty"`
}

func Cal(in io.Reader, out io.Writer) {
	var req Request
	decoder := json.NewDecoder(in)
	encoder := json.NewEncoder(out)
	for {
		req = Request{}
		err := decoder.Decode(&req)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			respond(encoder, Result{Error: err.Error()})
			// the stream cannot be resynchronised after a syntax error
			return
		}
		res, err := handle(req)
		if err != nil {
			res = Result{Error: err.Error()}
		}
		if err := respond(encoder, res); err != nil {
			return
		}
	}
}

// respond writes exactly one line for res. A result that cannot be
// encoded is answered with its encoding error instead.
func respond(encoder *json.Encoder, res Result) error {
	err := encoder.Encode(res)
	if err == nil {
		return nil
	}
	var ue *json.UnsupportedValueError
	if !errors.As(err, &ue) {
		return err
	}
	return encoder.Encode(Result{Error: err.Error()})
}

func handle(req Request) (res Result, err error) {
	f := synth.Frame{ID: req.Calib}
	if f.Calib, err = calib.Load(req.Calib); err != nil {
		return
	}
	if f.Labels, err = label.Load(req.Labels); err != nil {
		return
	}
	if req.Velodyne != "" {
		var pc *pcd.PointCloud
		if pc, err = pcd.Open(req.Velodyne); err != nil {
			return
		}
		f.Points = pc.Points
	}
	poses := req.Poses
	if len(poses) == 0 {
		poses = []pose.Pose{{}}
	}
	anns := synth.Synthesize(f, poses, synth.Options{
		ClipNear:       req.ClipNear,
		MinLidarPoints: req.MinLidarPoints,
	})
	res.Poses = make([][]Object, len(anns))
	for i, a := range anns {
		res.Poses[i] = []Object{}
		for _, o := range a.Objects {
			res.Poses[i] = append(res.Poses[i], Object{
				Type:        o.Type,
				Rect:        o.Rect,
				MinDepth:    o.MinDepth,
				LidarPoints: o.LidarPoints,
			})
		}
	}
	return res, nil
}

func main() {
	Cal(os.Stdin, os.Stdout)
}
