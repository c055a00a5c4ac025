package seq2seq

import (
	"errors"
	"fmt"

	"github.com/unixpickle/vidcap/caprnn"
)

// Params configures a Model.
type Params struct {
	// CellType is one of caprnn.CellRNN, caprnn.CellLSTM,
	// or caprnn.CellGRU.
	CellType string

	// Hidden is the size of every hidden state, projected
	// frame and word embedding.
	Hidden int

	// Layers is the depth of the encoder and decoder.
	Layers int

	// Dropout is the rate at which cell outputs are
	// dropped during training.
	Dropout float64

	BatchSize    int
	LearningRate float64

	ImageDim  int
	VocabSize int

	// VideoSteps is the number of frames per video.
	VideoSteps int

	// CaptionSteps is the padded caption length, including
	// the leading BOS.
	CaptionSteps int

	// Attention selects the attention variant of the
	// decoder.
	Attention bool

	// InitStddev is the standard deviation for the
	// projection, embedding and output weights.
	InitStddev float64
}

// DefaultParams returns the default hyper-parameters.
//
// The data-dependent fields (ImageDim, VocabSize and
// VideoSteps) are left as zero.
func DefaultParams() *Params {
	return &Params{
		CellType:     caprnn.CellLSTM,
		Hidden:       256,
		Layers:       1,
		Dropout:      0,
		BatchSize:    100,
		LearningRate: 0.002,
		CaptionSteps: 30,
		InitStddev:   0.02,
	}
}

// Validate checks that the parameters describe a model
// which can be built.
func (p *Params) Validate() error {
	switch p.CellType {
	case caprnn.CellRNN, caprnn.CellLSTM, caprnn.CellGRU:
	default:
		return fmt.Errorf("validate params: %w: %q", caprnn.ErrUnknownCell, p.CellType)
	}
	positive := []struct {
		name  string
		value int
	}{
		{"hidden size", p.Hidden},
		{"layer count", p.Layers},
		{"batch size", p.BatchSize},
		{"image dimension", p.ImageDim},
		{"vocabulary size", p.VocabSize},
		{"video steps", p.VideoSteps},
	}
	for _, x := range positive {
		if x.value <= 0 {
			return fmt.Errorf("validate params: %s must be positive (got %d)", x.name, x.value)
		}
	}
	if p.CaptionSteps < 2 {
		return errors.New("validate params: caption steps must be at least 2")
	}
	if p.Dropout < 0 || p.Dropout >= 1 {
		return fmt.Errorf("validate params: dropout must be in [0, 1) (got %f)", p.Dropout)
	}
	if p.LearningRate <= 0 {
		return fmt.Errorf("validate params: learning rate must be positive (got %f)",
			p.LearningRate)
	}
	return nil
}

func (p *Params) initStddev() float64 {
	if p.InitStddev == 0 {
		return 0.02
	}
	return p.InitStddev
}
