package vidcap

import (
	"math"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec/anyvec64"
)

func TestDropoutModes(t *testing.T) {
	if NewDropout(0.5, Inference).Enabled {
		t.Error("dropout enabled in inference mode")
	}
	if NewDropout(0, Training).Enabled {
		t.Error("dropout enabled with zero rate")
	}
	if !NewDropout(0.5, Training).Enabled {
		t.Error("dropout disabled in training mode")
	}
}

func TestDropoutInverted(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	ones := make([]float64, 10000)
	for i := range ones {
		ones[i] = 1
	}
	in := anydiff.NewConst(c.MakeVectorData(ones))

	d := NewDropout(0.25, Training)
	out := d.Apply(in, 1).Output().Data().([]float64)
	var sum float64
	for _, x := range out {
		if x != 0 && math.Abs(x-1/0.75) > 1e-8 {
			t.Fatalf("unexpected survivor value: %f", x)
		}
		sum += x
	}
	if mean := sum / float64(len(out)); math.Abs(mean-1) > 0.05 {
		t.Errorf("mean should be near 1 but got %f", mean)
	}

	d = NewDropout(0.25, Inference)
	if d.Apply(in, 1) != in {
		t.Error("disabled dropout should be the identity")
	}
}
