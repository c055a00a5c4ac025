package seq2seq

import (
	"reflect"
	"testing"

	"github.com/unixpickle/anyvec/anyvec64"
)

func TestTeacherForce(t *testing.T) {
	const bos, eos = 0, 1
	cases := []struct {
		caption []int
		inputs  []int
		targets []int
	}{
		{[]int{0, 5, 6, 1}, []int{0, 5, 6, 1, 1}, []int{5, 6, 1, 1, 1}},
		{[]int{5, 6}, []int{0, 5, 6, 1, 1}, []int{5, 6, 1, 1, 1}},
		{[]int{0, 2, 3, 4, 5, 6, 7, 1}, []int{0, 2, 3, 4, 5}, []int{2, 3, 4, 5, 1}},
		{nil, []int{0, 1, 1, 1, 1}, []int{1, 1, 1, 1, 1}},
	}
	for i, c := range cases {
		inputs, targets := TeacherForce(c.caption, bos, eos, 6)
		if len(inputs) != 5 || len(targets) != 5 {
			t.Errorf("case %d: bad lengths %d, %d", i, len(inputs), len(targets))
			continue
		}
		if !reflect.DeepEqual(inputs, c.inputs) {
			t.Errorf("case %d: expected inputs %v but got %v", i, c.inputs, inputs)
		}
		if !reflect.DeepEqual(targets, c.targets) {
			t.Errorf("case %d: expected targets %v but got %v", i, c.targets, targets)
		}
	}
}

func TestPackVideo(t *testing.T) {
	samples := []*Sample{
		{Video: []float64{1, 2, 3, 4}},
		{Video: []float64{5, 6, 7, 8}},
	}
	packed, err := PackVideo(anyvec64.DefaultCreator{}, 2, 2, samples)
	if err != nil {
		t.Fatal(err)
	}
	expected := []float64{1, 2, 5, 6, 3, 4, 7, 8}
	if !reflect.DeepEqual(packed.Data(), expected) {
		t.Errorf("expected %v but got %v", expected, packed.Data())
	}

	samples[1].Video = samples[1].Video[:3]
	if _, err := PackVideo(anyvec64.DefaultCreator{}, 2, 2, samples); err == nil {
		t.Error("expected error for short video")
	}
}

func TestNewBatch(t *testing.T) {
	p := testParams("lstm", false)
	samples := []*Sample{
		{Video: make([]float64, 6), Caption: []int{1, 3, 0}},
		{Video: make([]float64, 6), Caption: []int{1, 2, 4, 3, 0}},
	}
	b, err := NewBatch(anyvec64.DefaultCreator{}, p, testBOS, testEOS, samples)
	if err != nil {
		t.Fatal(err)
	}
	expectedIn := [][]int{{1, 1}, {3, 2}, {0, 4}}
	expectedOut := [][]int{{3, 2}, {0, 4}, {0, 0}}
	if !reflect.DeepEqual(b.Inputs, expectedIn) {
		t.Errorf("expected inputs %v but got %v", expectedIn, b.Inputs)
	}
	if !reflect.DeepEqual(b.Targets, expectedOut) {
		t.Errorf("expected targets %v but got %v", expectedOut, b.Targets)
	}
}
