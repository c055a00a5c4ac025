package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
	"github.com/unixpickle/essentials"
)

// Features is one video's feature matrix, stored
// row-major with one row per frame.
type Features struct {
	Steps int
	Dim   int
	Data  []float64
}

// ReadFeatures reads a 2-D .npy array of float32 or
// float64 values.
func ReadFeatures(path string) (*Features, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, essentials.AddCtx("read features", err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, essentials.AddCtx("read features", err)
	}
	shape := r.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("read features %s: expected 2-D array but got shape %v",
			path, shape)
	}
	res := &Features{Steps: shape[0], Dim: shape[1]}

	switch r.Header.Descr.Type {
	case "<f8", "f8", "float64":
		if err := r.Read(&res.Data); err != nil {
			return nil, essentials.AddCtx("read features", err)
		}
	case "<f4", "f4", "float32":
		var data []float32
		if err := r.Read(&data); err != nil {
			return nil, essentials.AddCtx("read features", err)
		}
		res.Data = make([]float64, len(data))
		for i, x := range data {
			res.Data[i] = float64(x)
		}
	default:
		return nil, fmt.Errorf("read features %s: unsupported type %s", path,
			r.Header.Descr.Type)
	}
	if len(res.Data) != res.Steps*res.Dim {
		return nil, fmt.Errorf("read features %s: expected %d values but got %d", path,
			res.Steps*res.Dim, len(res.Data))
	}
	return res, nil
}

// FeaturePath returns the path of a video's feature file
// in a feature directory.
func FeaturePath(dir, id string) string {
	return filepath.Join(dir, id+".npy")
}
