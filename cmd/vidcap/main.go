// Command vidcap trains a video captioning model and
// captions test videos with it.
package main

import (
	"log"
	"os"

	"github.com/getlantern/errors"
	"github.com/pkg/profile"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/vidcap/checkpoint"
	"github.com/unixpickle/vidcap/seq2seq"
	"gopkg.in/urfave/cli.v1"
)

const checkpointPrefix = "model"

// Flags holds the command-line configuration.
type Flags struct {
	Train bool
	Test  bool

	DictFile      string
	LabelFile     string
	TrainFeatures string
	TestFeatures  string
	TestIDFile    string
	CheckpointDir string
	ResultFile    string

	Params     *seq2seq.Params
	Epochs     int
	SaveStep   int
	Validation float64
	Sampling   bool
	Seed       int64
	Profile    bool
}

func main() {
	defaults := seq2seq.DefaultParams()

	app := cli.NewApp()
	app.Name = "vidcap"
	app.Usage = "train and run a video captioning model"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "train", Usage: "train the model"},
		cli.BoolFlag{Name: "test", Usage: "caption the test videos"},
		cli.StringFlag{Name: "dict", Value: "dictionary.txt", Usage: "dictionary file"},
		cli.StringFlag{Name: "labels", Value: "translated_training_label.json",
			Usage: "training label file"},
		cli.StringFlag{Name: "train-features", Value: "MLDS_hw2_1_data/training_data/feat",
			Usage: "directory of training features"},
		cli.StringFlag{Name: "test-features", Value: "MLDS_hw2_1_data/testing_data/feat",
			Usage: "directory of testing features"},
		cli.StringFlag{Name: "test-ids", Value: "MLDS_hw2_1_data/testing_id.txt",
			Usage: "file of test video IDs"},
		cli.StringFlag{Name: "checkpoints", Value: "s2s", Usage: "checkpoint directory"},
		cli.StringFlag{Name: "result", Value: "s2s/result.json", Usage: "result file"},
		cli.StringFlag{Name: "cell", Value: defaults.CellType, Usage: "rnn, lstm, or gru"},
		cli.IntFlag{Name: "hidden", Value: defaults.Hidden, Usage: "hidden size"},
		cli.IntFlag{Name: "layers", Value: defaults.Layers, Usage: "recurrent layers"},
		cli.Float64Flag{Name: "dropout", Value: defaults.Dropout, Usage: "dropout rate"},
		cli.IntFlag{Name: "batch", Value: defaults.BatchSize, Usage: "batch size"},
		cli.IntFlag{Name: "epochs", Value: 10, Usage: "training epochs"},
		cli.Float64Flag{Name: "lr", Value: defaults.LearningRate, Usage: "learning rate"},
		cli.IntFlag{Name: "max-caption", Value: defaults.CaptionSteps,
			Usage: "maximum caption length"},
		cli.IntFlag{Name: "save-step", Value: 10, Usage: "steps between checkpoints"},
		cli.Float64Flag{Name: "validation", Value: 0,
			Usage: "fraction of training videos to hold out"},
		cli.BoolFlag{Name: "attention", Usage: "use the attention decoder"},
		cli.BoolFlag{Name: "sampling", Usage: "sample captions instead of greedy decoding"},
		cli.Int64Flag{Name: "seed", Value: 0, Usage: "random seed for sampling"},
		cli.BoolFlag{Name: "profile", Usage: "write a CPU profile"},
	}
	app.Action = func(c *cli.Context) error {
		flags := parseFlags(c)
		if !flags.Train && !flags.Test {
			return errors.New("nothing to do: pass --train and/or --test")
		}
		if flags.Profile {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		creator := anyvec32.CurrentCreator()
		if flags.Train {
			if err := Train(creator, flags); err != nil {
				return errors.New("train: %v", err)
			}
		}
		if flags.Test {
			if err := Test(creator, flags); err != nil {
				return errors.New("test: %v", err)
			}
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		essentials.Die(err)
	}
}

func parseFlags(c *cli.Context) *Flags {
	p := seq2seq.DefaultParams()
	p.CellType = c.String("cell")
	p.Hidden = c.Int("hidden")
	p.Layers = c.Int("layers")
	p.Dropout = c.Float64("dropout")
	p.BatchSize = c.Int("batch")
	p.LearningRate = c.Float64("lr")
	p.CaptionSteps = c.Int("max-caption")
	p.Attention = c.Bool("attention")
	return &Flags{
		Train:         c.Bool("train"),
		Test:          c.Bool("test"),
		DictFile:      c.String("dict"),
		LabelFile:     c.String("labels"),
		TrainFeatures: c.String("train-features"),
		TestFeatures:  c.String("test-features"),
		TestIDFile:    c.String("test-ids"),
		CheckpointDir: c.String("checkpoints"),
		ResultFile:    c.String("result"),
		Params:        p,
		Epochs:        c.Int("epochs"),
		SaveStep:      c.Int("save-step"),
		Validation:    c.Float64("validation"),
		Sampling:      c.Bool("sampling"),
		Seed:          c.Int64("seed"),
		Profile:       c.Bool("profile"),
	}
}

func newSaver(f *Flags) *checkpoint.Saver {
	return checkpoint.NewSaver(f.CheckpointDir, checkpointPrefix)
}

func logParams(p *seq2seq.Params) {
	log.Printf("cell=%s hidden=%d layers=%d dropout=%v batch=%d lr=%v attention=%v",
		p.CellType, p.Hidden, p.Layers, p.Dropout, p.BatchSize, p.LearningRate, p.Attention)
	log.Printf("image_dim=%d vocab=%d video_steps=%d caption_steps=%d",
		p.ImageDim, p.VocabSize, p.VideoSteps, p.CaptionSteps)
}
