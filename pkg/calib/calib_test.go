package calib

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const minimal = `P2: 1 0 2 3 0 1 4 5 0 0 1 6
R0_rect: 1 0 0 0 1 0 0 0 1
Tr_velo_to_cam: 0 -1 0 7 0 0 -1 8 1 0 0 9
`

func TestLoadSample(t *testing.T) {
	s, err := Load("testdata/000000.txt")
	require.NoError(t, err)

	p := s.Projection()
	assert.InDelta(t, 707.0493, p.At(0, 0), 1e-9)
	assert.InDelta(t, 45.75831, p.At(0, 3), 1e-9)
	assert.Equal(t, []float64{0, 0, 0, 1}, mat.Row(nil, 3, p))

	r := s.Rectification()
	assert.InDelta(t, 0.9999128, r.At(0, 0), 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 1}, mat.Row(nil, 3, r))
	assert.Equal(t, []float64{0, 0, 0, 1}, mat.Col(nil, 3, r))

	tr := s.SensorToCamera()
	assert.InDelta(t, -0.3321029, tr.At(2, 3), 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 1}, mat.Row(nil, 3, tr))

	imu, ok := s.Raw("Tr_imu_to_velo")
	require.True(t, ok)
	assert.Len(t, imu, 12)
	_, ok = s.Raw("Tr_cam_to_road")
	assert.False(t, ok)
}

func TestParseLifts(t *testing.T) {
	s, err := Parse(strings.NewReader(minimal))
	require.NoError(t, err)

	want := mat.NewDense(4, 4, []float64{
		0, -1, 0, 7,
		0, 0, -1, 8,
		1, 0, 0, 9,
		0, 0, 0, 1,
	})
	assert.True(t, mat.Equal(want, s.SensorToCamera()))

	id := mat.NewDiagDense(4, []float64{1, 1, 1, 1})
	assert.True(t, mat.Equal(id, s.Rectification()))
}

func TestAccessorsReturnCopies(t *testing.T) {
	s, err := Parse(strings.NewReader(minimal))
	require.NoError(t, err)

	p := s.Projection()
	p.Set(0, 0, 42)
	assert.Equal(t, 1.0, s.Projection().At(0, 0))

	raw, ok := s.Raw(KeyProjection)
	require.True(t, ok)
	raw[0] = 42
	c, err := s.WithCamera(KeyProjection)
	require.NoError(t, err)
	raw, _ = c.Raw(KeyProjection)
	assert.Equal(t, 1.0, raw[0])
}

func TestMissingKey(t *testing.T) {
	for _, key := range []string{KeyProjection, KeyRectification, KeySensorToCamera} {
		t.Run(key, func(t *testing.T) {
			var kept []string
			for _, l := range strings.Split(strings.TrimSpace(minimal), "\n") {
				if !strings.HasPrefix(l, key+":") {
					kept = append(kept, l)
				}
			}
			_, err := Parse(strings.NewReader(strings.Join(kept, "\n")))
			var mk *MissingKeyError
			require.True(t, errors.As(err, &mk), "got %v", err)
			assert.Equal(t, key, mk.Key)
		})
	}
}

func TestMalformed(t *testing.T) {
	t.Run("count", func(t *testing.T) {
		rec := strings.Replace(minimal, "R0_rect: 1 0 0 0 1 0 0 0 1", "R0_rect: 1 0 0 0 1 0 0 0", 1)
		_, err := Parse(strings.NewReader(rec))
		var me *MalformedError
		require.True(t, errors.As(err, &me), "got %v", err)
		assert.Equal(t, KeyRectification, me.Key)
		assert.Equal(t, 9, me.Want)
		assert.Equal(t, 8, me.Got)
	})
	t.Run("number", func(t *testing.T) {
		rec := strings.Replace(minimal, "P2: 1 0 2", "P2: 1 x 2", 1)
		_, err := Parse(strings.NewReader(rec))
		var me *MalformedError
		require.True(t, errors.As(err, &me), "got %v", err)
		assert.Equal(t, KeyProjection, me.Key)
		assert.Error(t, errors.Unwrap(me))
	})
}

func TestCamera(t *testing.T) {
	s, err := Load("testdata/000000.txt")
	require.NoError(t, err)

	p0, err := s.Camera("P0")
	require.NoError(t, err)
	assert.Equal(t, 0.0, p0.At(0, 3))

	c, err := s.WithCamera("P3")
	require.NoError(t, err)
	assert.InDelta(t, -334.1081, c.Projection().At(0, 3), 1e-9)
	assert.InDelta(t, 45.75831, s.Projection().At(0, 3), 1e-9)

	_, err = s.Camera("P9")
	var mk *MissingKeyError
	assert.True(t, errors.As(err, &mk))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/nope.txt")
	assert.Error(t, err)
}
