package pcd

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

const (
	BinPointDataLen = 4 * 4
)

var (
	ErrInvalidDataFormat = errors.New("invalid data")
)

// Bin is a KITTI velodyne scan: a flat run of little-endian float32
// quadruples (x, y, z, reflectance).
type Bin struct {
	PointCloud
}

func DecodeBin(r io.Reader) (bin *Bin, err error) {
	bin = &Bin{}
	var data = make([]byte, BinPointDataLen)
	var n int
	for {
		n, err = io.ReadFull(r, data)
		if err != nil {
			if err == io.EOF {
				err = nil
				break
			}
			if err == io.ErrUnexpectedEOF && n > 0 {
				err = ErrInvalidDataFormat
			}
			return nil, err
		}
		bin.AddPoint(Point{
			X: math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])),
			Z: math.Float32frombits(binary.LittleEndian.Uint32(data[8:12])),
			R: math.Float32frombits(binary.LittleEndian.Uint32(data[12:16])),
		})
	}
	return
}

// Encode writes the scan back in KITTI .bin layout.
func (bin *Bin) Encode(w io.Writer) error {
	buf := make([]byte, BinPointDataLen)
	for _, p := range bin.Points {
		binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.Y))
		binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(p.Z))
		binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(p.R))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
