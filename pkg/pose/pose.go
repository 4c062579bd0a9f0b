// Package pose builds the virtual camera transforms used to augment a
// frame: a rigid-body 4x4 matrix from yaw/pitch/roll in degrees and a
// translation in metres, all in camera-frame conventions
// (X right, Y down, Z forward).
package pose

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Pose is a virtual camera pose. The zero value is the real camera.
type Pose struct {
	Yaw   float64 `yaml:"yaw" json:"yaw"`
	Pitch float64 `yaml:"pitch" json:"pitch"`
	Roll  float64 `yaml:"roll" json:"roll"`
	TX    float64 `yaml:"tx" json:"tx"`
	TY    float64 `yaml:"ty" json:"ty"`
	TZ    float64 `yaml:"tz" json:"tz"`
}

// IsZero reports whether p leaves the camera where it is.
func (p Pose) IsZero() bool {
	return p == Pose{}
}

// Matrix is Compose over the fields of p.
func (p Pose) Matrix() *mat.Dense {
	return Compose(p.Yaw, p.Pitch, p.Roll, p.TX, p.TY, p.TZ)
}

func (p Pose) String() string {
	return fmt.Sprintf("yaw=%g pitch=%g roll=%g tx=%g ty=%g tz=%g",
		p.Yaw, p.Pitch, p.Roll, p.TX, p.TY, p.TZ)
}

// Compose returns Translation(tx,ty,tz) · Roll(roll) · Yaw(yaw) · Pitch(pitch).
// Pitch is applied to a point first, the translation last.
func Compose(yawDeg, pitchDeg, rollDeg, tx, ty, tz float64) *mat.Dense {
	var ry, r, out mat.Dense
	ry.Mul(Roll(rollDeg), Yaw(yawDeg))
	r.Mul(&ry, Pitch(pitchDeg))
	out.Mul(Translation(tx, ty, tz), &r)
	return &out
}

// Yaw rotates about the vertical (Y) axis.
func Yaw(deg float64) *mat.Dense {
	if deg == 0 {
		return Identity()
	}
	s, c := math.Sincos(deg * math.Pi / 180)
	return mat.NewDense(4, 4, []float64{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	})
}

// Pitch rotates about the horizontal (X) axis.
func Pitch(deg float64) *mat.Dense {
	if deg == 0 {
		return Identity()
	}
	s, c := math.Sincos(deg * math.Pi / 180)
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	})
}

// Roll rotates about the depth (Z) axis.
func Roll(deg float64) *mat.Dense {
	if deg == 0 {
		return Identity()
	}
	s, c := math.Sincos(deg * math.Pi / 180)
	return mat.NewDense(4, 4, []float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// Translation moves the camera by (tx, ty, tz).
func Translation(tx, ty, tz float64) *mat.Dense {
	m := Identity()
	m.Set(0, 3, tx)
	m.Set(1, 3, ty)
	m.Set(2, 3, tz)
	return m
}

func Identity() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}
