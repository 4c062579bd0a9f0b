package yolo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kittiaug/pkg/project"
)

func TestFromRect(t *testing.T) {
	l := FromRect("Pedestrian", project.Rect{XMin: 100, YMin: 50, XMax: 300, YMax: 150}, 1000, 500)
	assert.Equal(t, Line{Class: 1, XCenter: 0.2, YCenter: 0.2, Width: 0.2, Height: 0.2}, l)
}

func TestClassID(t *testing.T) {
	assert.Equal(t, 0, ClassID("Car"))
	assert.Equal(t, 6, ClassID("Misc"))
	assert.Equal(t, 0, ClassID("Person_sitting"))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []Line{
		{Class: 4, XCenter: 0.5, YCenter: 0.25, Width: 0.1, Height: 0.125},
		{Class: 0, XCenter: 1, YCenter: 1, Width: 0, Height: 0},
	}))
	assert.Equal(t, "4 0.500000 0.250000 0.100000 0.125000\n0 1.000000 1.000000 0.000000 0.000000\n", buf.String())
}
