package main

import (
	"log"
	"math/rand"

	"github.com/getlantern/errors"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/rip"
	"github.com/unixpickle/vidcap"
	"github.com/unixpickle/vidcap/capsgd"
	"github.com/unixpickle/vidcap/dataset"
	"github.com/unixpickle/vidcap/seq2seq"
)

// Train fits a model to the labeled training videos,
// resuming from the latest checkpoint if there is one.
func Train(c anyvec.Creator, f *Flags) error {
	dict, err := dataset.ReadDictionary(f.DictFile)
	if err != nil {
		return err
	}
	labels, err := dataset.ReadLabels(f.LabelFile)
	if err != nil {
		return err
	}
	samples := dataset.NewSampleList(f.TrainFeatures, labels)
	if samples.Len() == 0 {
		return errors.New("no labeled training videos in %s", f.LabelFile)
	}
	if err := fillVideoShape(f.Params, f.TrainFeatures, samples.Entries[0].ID); err != nil {
		return err
	}
	f.Params.VocabSize = dict.Size()
	logParams(f.Params)

	var training, validation capsgd.SampleList = samples, nil
	if f.Validation > 0 {
		validation, training = capsgd.HashSplit(samples, f.Validation)
		log.Printf("split %d training and %d validation videos",
			training.Len(), validation.Len())
	}

	model, err := seq2seq.NewModel(c, f.Params, vidcap.Training)
	if err != nil {
		return err
	}
	model.AttachSaver(newSaver(f))

	adam := &capsgd.Adam{Vars: model.Parameters()}
	transformer := capsgd.Chain{&capsgd.Clip{Bound: 1}, adam}
	startStep, err := model.Restore(transformer)
	if err != nil {
		return err
	}
	if startStep > 0 {
		log.Printf("resumed from step %d", startStep)
	}

	totalSteps := training.Len() * f.Epochs / f.Params.BatchSize
	if startStep >= totalSteps {
		log.Printf("already trained for %d steps", startStep)
		return nil
	}

	trainer := &seq2seq.Trainer{
		Model: model,
		BOS:   dict.BOS(),
		EOS:   dict.EOS(),
	}
	var iterNum int
	s := &capsgd.SGD{
		Fetcher:     trainer,
		Gradienter:  trainer,
		Transformer: transformer,
		Samples:     training,
		Rater:       capsgd.ConstRater(f.Params.LearningRate),
		BatchSize:   f.Params.BatchSize,
		NumSteps:    startStep,
		StatusFunc: func(b capsgd.Batch) {
			if iterNum > 0 {
				log.Printf("iter %d: cost=%v", startStep+iterNum, trainer.LastCost)
			}
			iterNum++
		},
		StepFunc: func(step int) error {
			if f.SaveStep <= 0 || step%f.SaveStep != 0 {
				return nil
			}
			if err := model.Save(step, transformer); err != nil {
				return err
			}
			log.Printf("step %d: saved checkpoint", step)
			if validation != nil && validation.Len() > 0 {
				cost, err := validationCost(trainer, validation, f.Params.BatchSize)
				if err != nil {
					return err
				}
				log.Printf("step %d: validation=%v", step, cost)
			}
			return nil
		},
	}

	log.Println("Training (ctrl+c to finish)...")
	stopper := capsgd.AnyStopper{
		&capsgd.StepStopper{Remaining: totalSteps - startStep},
		capsgd.ChanStopper(rip.NewRIP().Chan()),
	}
	if err := s.Run(stopper); err != nil {
		return err
	}
	if err := model.Save(s.NumSteps, transformer); err != nil {
		return err
	}
	log.Printf("saved final checkpoint at step %d", s.NumSteps)
	return nil
}

// validationCost evaluates the loss on a random batch of
// held-out videos with dropout disabled.
func validationCost(t *seq2seq.Trainer, l capsgd.SampleList, batchSize int) (anyvec.Numeric, error) {
	n := batchSize
	if n > l.Len() {
		n = l.Len()
	}
	start := rand.Intn(l.Len() - n + 1)
	batch, err := t.Fetch(l.Slice(start, start+n))
	if err != nil {
		return nil, err
	}
	t.Model.SetMode(vidcap.Inference)
	defer t.Model.SetMode(vidcap.Training)
	return anyvec.Sum(t.TotalCost(batch).Output()), nil
}

// fillVideoShape sets the frame count and feature size
// from one video's features.
func fillVideoShape(p *seq2seq.Params, dir, id string) error {
	features, err := dataset.ReadFeatures(dataset.FeaturePath(dir, id))
	if err != nil {
		return err
	}
	p.VideoSteps = features.Steps
	p.ImageDim = features.Dim
	return nil
}
