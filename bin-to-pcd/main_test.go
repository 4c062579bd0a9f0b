package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kittiaug/pkg/pcd"
)

var scan = []pcd.Point{
	{X: 1, Y: 2, Z: 3, R: 0.5},
	{X: -4, Y: 0.25, Z: 8, R: 0},
	{X: 10, Y: -1, Z: -1.5, R: 1},
}

func TestConvertCountsPoints(t *testing.T) {
	var bin bytes.Buffer
	require.NoError(t, (&pcd.Bin{PointCloud: pcd.PointCloud{Points: scan}}).Encode(&bin))

	var out bytes.Buffer
	n, err := convert("000000.bin", &bin, &out)
	require.NoError(t, err)
	assert.Equal(t, len(scan), n)
	assert.NotZero(t, out.Len())

	_, err = convert("000000.txt", &bin, &out)
	assert.ErrorIs(t, err, pcd.ErrUnsupportPointCloudFileType)
}

func TestTransDirRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var bin bytes.Buffer
	require.NoError(t, (&pcd.Bin{PointCloud: pcd.PointCloud{Points: scan}}).Encode(&bin))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000000.bin"), bin.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	require.NoError(t, TransDir(dir, dir))
	pc, err := pcd.Open(filepath.Join(dir, "000000.pcd"))
	require.NoError(t, err)
	assert.Equal(t, scan, pc.Points)

	back := t.TempDir()
	cfg.reverse = true
	t.Cleanup(func() { cfg.reverse = false })
	require.NoError(t, TransDir(dir, back))
	got, err := os.ReadFile(filepath.Join(back, "000000.bin"))
	require.NoError(t, err)
	assert.Equal(t, bin.Bytes(), got)
	_, err = os.Stat(filepath.Join(back, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}
