package pcd

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"strings"

	"github.com/seqsense/pcgol/pc"
)

var (
	ErrInvalidPcdFormat = errors.New("invalid pcd format")
)

// header of an empty x/y/z/intensity cloud; Encode fills in the size and data.
const pcdHeader = `VERSION 0.7
FIELDS x y z intensity
SIZE 4 4 4 4
TYPE F F F F
COUNT 1 1 1 1
WIDTH 0
HEIGHT 1
VIEWPOINT 0 0 0 1 0 0 0
POINTS 0
DATA binary
`

type Pcd struct {
	PointCloud
}

// DecodePcd reads ascii, binary and binary_compressed PCD files. Clouds
// without an intensity field get R=1.
func DecodePcd(r io.Reader) (*Pcd, error) {
	pp, err := pc.Unmarshal(r)
	if err != nil {
		return nil, err
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, ErrInvalidPcdFormat
	}
	intensity, ierr := pp.Float32Iterator("intensity")
	hasIntensity := ierr == nil

	p := &Pcd{
		PointCloud: PointCloud{
			Points: make([]Point, 0, pp.Points),
		},
	}
	for ; it.IsValid(); it.Incr() {
		v := it.Vec3()
		pt := Point{X: v[0], Y: v[1], Z: v[2], R: 1}
		if hasIntensity && intensity.IsValid() {
			pt.R = intensity.Float32()
			intensity.Incr()
		}
		p.AddPoint(pt)
	}
	return p, nil
}

func (p *Pcd) Encode(w io.Writer) error {
	pp, err := pc.Unmarshal(strings.NewReader(pcdHeader))
	if err != nil {
		return err
	}
	n := len(p.Points)
	data := make([]byte, n*BinPointDataLen)
	for i, pt := range p.Points {
		b := data[i*BinPointDataLen:]
		binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(pt.X))
		binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(pt.Y))
		binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(pt.Z))
		binary.LittleEndian.PutUint32(b[12:16], math.Float32bits(pt.R))
	}
	pp.Width = n
	pp.Height = 1
	pp.Points = n
	pp.Data = data
	return pc.Marshal(pp, w)
}
