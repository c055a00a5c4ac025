package main

import (
	"log"
	"math/rand"

	"github.com/getlantern/errors"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/vidcap"
	"github.com/unixpickle/vidcap/dataset"
	"github.com/unixpickle/vidcap/seq2seq"
)

// Test captions every test video with the latest
// checkpoint and writes the captions as JSON.
func Test(c anyvec.Creator, f *Flags) error {
	dict, err := dataset.ReadDictionary(f.DictFile)
	if err != nil {
		return err
	}
	ids, err := dataset.ReadIDs(f.TestIDFile)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.New("no test IDs in %s", f.TestIDFile)
	}
	if err := fillVideoShape(f.Params, f.TestFeatures, ids[0]); err != nil {
		return err
	}
	f.Params.VocabSize = dict.Size()
	logParams(f.Params)

	model, err := seq2seq.NewModel(c, f.Params, vidcap.Inference)
	if err != nil {
		return err
	}
	model.AttachSaver(newSaver(f))
	step, err := model.Restore(nil)
	if err != nil {
		return err
	}
	if step == 0 {
		log.Println("warning: no checkpoint found; using untrained model")
	} else {
		log.Printf("restored checkpoint from step %d", step)
	}

	var sel seq2seq.Selector = seq2seq.Greedy{}
	if f.Sampling {
		sel = &seq2seq.Sampler{Rand: rand.New(rand.NewSource(f.Seed))}
	}

	var results []*dataset.Result
	batchSize := f.Params.BatchSize
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batchIDs := ids[start:end]
		captions, err := captionBatch(c, f, model, dict, sel, batchIDs)
		if err != nil {
			return err
		}
		for i, id := range batchIDs {
			results = append(results, &dataset.Result{Caption: captions[i], ID: id})
		}
		log.Printf("captioned %d/%d videos", end, len(ids))
	}

	if err := dataset.WriteResults(f.ResultFile, results); err != nil {
		return err
	}
	log.Printf("wrote %d captions to %s", len(results), f.ResultFile)
	return nil
}

func captionBatch(c anyvec.Creator, f *Flags, m *seq2seq.Model, dict *dataset.Dictionary,
	sel seq2seq.Selector, ids []string) ([][]string, error) {
	samples := make([]*seq2seq.Sample, len(ids))
	for i, id := range ids {
		features, err := dataset.ReadFeatures(dataset.FeaturePath(f.TestFeatures, id))
		if err != nil {
			return nil, err
		}
		samples[i] = &seq2seq.Sample{Video: features.Data}
	}
	video, err := seq2seq.PackVideo(c, f.Params.VideoSteps, f.Params.ImageDim, samples)
	if err != nil {
		return nil, err
	}
	tokens := m.Generate(video, len(ids), dict.BOS(), dict.EOS(), sel)
	res := make([][]string, len(ids))
	for i, t := range tokens {
		res[i] = dict.Words(t)
	}
	return res, nil
}
