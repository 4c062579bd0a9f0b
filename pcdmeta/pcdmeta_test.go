package main

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kittiaug/pkg/project"
)

func TestCal(t *testing.T) {
	in := strings.NewReader(`{"calib": "../pkg/calib/testdata/000000.txt", "labels": "testdata/000000.txt", "poses": [{}, {"yaw": 180}]}
{"calib": "missing.txt", "labels": "testdata/000000.txt"}
`)
	var out bytes.Buffer
	Cal(in, &out)

	dec := json.NewDecoder(&out)
	var res Result
	require.NoError(t, dec.Decode(&res))
	assert.Empty(t, res.Error)
	require.Len(t, res.Poses, 2)
	require.Len(t, res.Poses[0], 1)
	assert.Equal(t, "Car", res.Poses[0][0].Type)
	assert.Less(t, res.Poses[0][0].Rect.XMin, res.Poses[0][0].Rect.XMax)
	assert.Empty(t, res.Poses[1])

	res = Result{}
	require.NoError(t, dec.Decode(&res))
	assert.Contains(t, res.Error, "missing.txt")
}

func TestCalOneLinePerRequest(t *testing.T) {
	// the box of centre.txt has a corner on the camera centre
	in := strings.NewReader(`{"calib": "testdata/pinhole.txt", "labels": "testdata/centre.txt", "poses": [{}]}
{"calib": "testdata/pinhole.txt", "labels": "testdata/centre.txt", "poses": [{"tz": 5}]}
`)
	var out bytes.Buffer
	Cal(in, &out)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var res Result
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &res))
	assert.Empty(t, res.Error)
	require.Len(t, res.Poses, 1)
	require.Len(t, res.Poses[0], 1)
	assert.Equal(t, project.Rect{XMin: 50, YMin: 0, XMax: 150, YMax: 50}, res.Poses[0][0].Rect)

	res = Result{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &res))
	assert.Empty(t, res.Error)
	require.Len(t, res.Poses, 1)
	assert.Len(t, res.Poses[0], 1)
}

func TestRespondUnencodable(t *testing.T) {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	bad := Result{Poses: [][]Object{{{Type: "Car", Rect: project.Rect{XMin: math.NaN()}}}}}
	require.NoError(t, respond(enc, bad))
	require.NoError(t, respond(enc, Result{Error: "next"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var res Result
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &res))
	assert.Contains(t, res.Error, "NaN")
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &res))
	assert.Equal(t, "next", res.Error)
}
