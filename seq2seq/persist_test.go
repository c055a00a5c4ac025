package seq2seq

import (
	"io/ioutil"
	"os"
	"reflect"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/vidcap"
	"github.com/unixpickle/vidcap/caprnn"
	"github.com/unixpickle/vidcap/capsgd"
	"github.com/unixpickle/vidcap/checkpoint"
)

func TestSaveRestore(t *testing.T) {
	dir, err := ioutil.TempDir("", "seq2seq")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	c := anyvec32.DefaultCreator{}
	m := testModel(c, "lstm", true)
	m.AttachSaver(checkpoint.NewSaver(dir, "model"))
	if err := m.Save(17, nil); err != nil {
		t.Fatal(err)
	}

	var saved []interface{}
	for _, p := range m.Parameters() {
		saved = append(saved, append([]float32{}, p.Vector.Data().([]float32)...))
	}

	m2 := testModel(c, "lstm", true)
	m2.AttachSaver(checkpoint.NewSaver(dir, "model"))
	step, err := m2.Restore(nil)
	if err != nil {
		t.Fatal(err)
	}
	if step != 17 {
		t.Errorf("expected step 17 but got %d", step)
	}
	for i, p := range m2.Parameters() {
		if !reflect.DeepEqual(p.Vector.Data(), saved[i]) {
			t.Errorf("parameter %d differs", i)
		}
	}
}

func TestSaveRestoreOptimizer(t *testing.T) {
	dir, err := ioutil.TempDir("", "seq2seq")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	c := anyvec32.DefaultCreator{}
	m := testModel(c, "gru", false)
	m.AttachSaver(checkpoint.NewSaver(dir, "model"))
	adam := &capsgd.Adam{Vars: m.Parameters()}
	grad := capsgdGrad(m)
	adam.Transform(grad)
	if err := m.Save(3, capsgd.Chain{&capsgd.Clip{Bound: 1}, adam}); err != nil {
		t.Fatal(err)
	}
	expected, err := adam.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	restored := &capsgd.Adam{Vars: m.Parameters()}
	if _, err := m.Restore(capsgd.Chain{&capsgd.Clip{Bound: 1}, restored}); err != nil {
		t.Fatal(err)
	}
	actual, err := restored.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(actual, expected) {
		t.Error("optimizer state not restored")
	}
}

func TestRestoreAcrossModes(t *testing.T) {
	dir, err := ioutil.TempDir("", "seq2seq")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	c := anyvec32.DefaultCreator{}
	p := testParams("lstm", true)
	p.Dropout = 0.3
	trained, err := NewModel(c, p, vidcap.Training)
	if err != nil {
		t.Fatal(err)
	}
	trained.AttachSaver(checkpoint.NewSaver(dir, "model"))
	if err := trained.Save(5, nil); err != nil {
		t.Fatal(err)
	}

	_, layers, err := checkpoint.NewSaver(dir, "model").Restore(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := layers[1].(caprnn.Stack); !ok {
		t.Errorf("encoder saved as %T", layers[1])
	}
	if _, ok := layers[len(layers)-1].(*Attention); !ok {
		t.Errorf("attention saved as %T", layers[len(layers)-1])
	}

	inference, err := NewModel(c, p, vidcap.Inference)
	if err != nil {
		t.Fatal(err)
	}
	inference.AttachSaver(checkpoint.NewSaver(dir, "model"))
	if _, err := inference.Restore(nil); err != nil {
		t.Fatal(err)
	}
	expected := trained.Parameters()
	for i, param := range inference.Parameters() {
		if !reflect.DeepEqual(param.Vector.Data(), expected[i].Vector.Data()) {
			t.Errorf("parameter %d differs", i)
		}
	}
}

func TestRestoreMismatch(t *testing.T) {
	dir, err := ioutil.TempDir("", "seq2seq")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	c := anyvec32.DefaultCreator{}
	m := testModel(c, "gru", true)
	m.AttachSaver(checkpoint.NewSaver(dir, "model"))
	if err := m.Save(1, nil); err != nil {
		t.Fatal(err)
	}

	for _, other := range []*Model{testModel(c, "gru", false), testModel(c, "lstm", true)} {
		other.AttachSaver(checkpoint.NewSaver(dir, "model"))
		before := other.Parameters()[0].Vector.Copy()
		if _, err := other.Restore(nil); err == nil {
			t.Error("expected error for mismatched model")
		}
		if !reflect.DeepEqual(before.Data(), other.Parameters()[0].Vector.Data()) {
			t.Error("failed restore modified parameters")
		}
	}
}

func TestNoSaver(t *testing.T) {
	m := testModel(anyvec32.DefaultCreator{}, "rnn", false)
	if err := m.Save(1, nil); err != ErrNoSaver {
		t.Errorf("expected ErrNoSaver but got %v", err)
	}
	if _, err := m.Restore(nil); err != ErrNoSaver {
		t.Errorf("expected ErrNoSaver but got %v", err)
	}
}

func capsgdGrad(m *Model) anydiff.Grad {
	grad := anydiff.NewGrad(m.Parameters()...)
	for _, vec := range grad {
		anyvec.Rand(vec, anyvec.Normal, nil)
	}
	return grad
}
