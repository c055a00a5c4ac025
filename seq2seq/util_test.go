package seq2seq

import (
	"fmt"
	"math/rand"

	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/vidcap"
	"github.com/unixpickle/vidcap/capsgd"
)

// Token 0 doubles as padding and end of caption.
const (
	testEOS = 0
	testBOS = 1
)

func testParams(cellType string, attention bool) *Params {
	p := DefaultParams()
	p.CellType = cellType
	p.Hidden = 4
	p.Layers = 1
	p.BatchSize = 2
	p.ImageDim = 3
	p.VocabSize = 5
	p.VideoSteps = 2
	p.CaptionSteps = 4
	p.Attention = attention
	p.InitStddev = 0.5
	return p
}

func testModel(c anyvec.Creator, cellType string, attention bool) *Model {
	m, err := NewModel(c, testParams(cellType, attention), vidcap.Training)
	if err != nil {
		panic(err)
	}
	return m
}

func testSamples(r *rand.Rand, p *Params, n int) []*Sample {
	var res []*Sample
	for i := 0; i < n; i++ {
		video := make([]float64, p.VideoSteps*p.ImageDim)
		for j := range video {
			video[j] = r.NormFloat64()
		}
		caption := []int{testBOS}
		for j := 0; j < 1+r.Intn(3); j++ {
			caption = append(caption, 2+r.Intn(p.VocabSize-2))
		}
		caption = append(caption, testEOS)
		res = append(res, &Sample{Video: video, Caption: caption})
	}
	return res
}

type testSampleList struct {
	Samples []*Sample
	FailAt  int
}

func (t *testSampleList) Len() int {
	return len(t.Samples)
}

func (t *testSampleList) Swap(i, j int) {
	t.Samples[i], t.Samples[j] = t.Samples[j], t.Samples[i]
}

func (t *testSampleList) Slice(i, j int) capsgd.SampleList {
	return &testSampleList{
		Samples: append([]*Sample{}, t.Samples[i:j]...),
		FailAt:  t.FailAt - i,
	}
}

func (t *testSampleList) GetSample(i int) (*Sample, error) {
	if i == t.FailAt {
		return nil, fmt.Errorf("sample %d unavailable", i)
	}
	return t.Samples[i], nil
}
