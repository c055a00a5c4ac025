package vidcap

import (
	"math"
	"testing"

	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvec64"
)

func TestTruncatedNormal(t *testing.T) {
	vec := TruncatedNormal(anyvec64.DefaultCreator{}, 5000, 0.02)
	for i, x := range vec.Data().([]float64) {
		if math.Abs(x) > 0.04 {
			t.Fatalf("sample %d out of bounds: %f", i, x)
		}
	}
}

func TestOneHot(t *testing.T) {
	vec := OneHot(anyvec32.DefaultCreator{}, []int{2, 0}, 3)
	actual := Floats(vec)
	expected := []float64{0, 0, 1, 1, 0, 0}
	for i, x := range expected {
		if actual[i] != x {
			t.Errorf("component %d: expected %f but got %f", i, x, actual[i])
		}
	}
}
