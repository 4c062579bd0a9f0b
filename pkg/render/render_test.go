package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kittiaug/pkg/project"
	"kittiaug/pkg/synth"
)

func annotation() synth.FrameAnnotation {
	return synth.FrameAnnotation{
		FrameID: "000000",
		Objects: []synth.Annotation{{
			Type: "Car",
			Rect: project.Rect{XMin: 10, YMin: 10, XMax: 40, YMax: 30},
			Box: project.ProjectedBox{
				Visible: true,
				Points: [8]r2.Point{
					{X: 10, Y: 30}, {X: 40, Y: 30}, {X: 40, Y: 25}, {X: 10, Y: 25},
					{X: 10, Y: 10}, {X: 40, Y: 10}, {X: 40, Y: 15}, {X: 10, Y: 15},
				},
			},
		}},
		Lidar: project.Projected{
			Points:    []r2.Point{{X: 5, Y: 5}, {X: 20, Y: 20}, {X: 500, Y: 5}},
			Depths:    []float64{10, 20, 10},
			Intensity: []float32{0, 0, 0},
		},
	}
}

func TestPlot(t *testing.T) {
	p, err := Plot(annotation(), 64, 48, Options{Wireframe: true})
	require.NoError(t, err)
	assert.Equal(t, 64.0, p.X.Max)
	assert.Equal(t, 48.0, p.Y.Max)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, Save(path, annotation(), 64, 48, Options{MaxDepth: 15}))
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, st.Size())
}
