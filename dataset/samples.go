package dataset

import (
	"crypto/sha1"
	"math/rand"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/vidcap/capsgd"
	"github.com/unixpickle/vidcap/seq2seq"
)

// An Entry is a training video and its reference
// captions.
type Entry struct {
	ID       string
	Captions [][]int
}

// A SampleList is a seq2seq.SampleList which loads video
// features from a directory of .npy files.
//
// Each time a sample is loaded, one of its captions is
// chosen at random.
type SampleList struct {
	FeatureDir string
	Entries    []*Entry
}

// NewSampleList creates a SampleList with one entry per
// labeled video, in sorted ID order.
// Videos without captions are skipped.
func NewSampleList(featureDir string, labels Labels) *SampleList {
	res := &SampleList{FeatureDir: featureDir}
	for _, id := range labels.IDs() {
		if len(labels[id]) > 0 {
			res.Entries = append(res.Entries, &Entry{ID: id, Captions: labels[id]})
		}
	}
	return res
}

// Len returns the number of entries.
func (s *SampleList) Len() int {
	return len(s.Entries)
}

// Swap swaps two entries.
func (s *SampleList) Swap(i, j int) {
	s.Entries[i], s.Entries[j] = s.Entries[j], s.Entries[i]
}

// Slice copies a range of the list.
func (s *SampleList) Slice(i, j int) capsgd.SampleList {
	return &SampleList{
		FeatureDir: s.FeatureDir,
		Entries:    append([]*Entry{}, s.Entries[i:j]...),
	}
}

// Hash hashes the video ID of an entry.
func (s *SampleList) Hash(i int) []byte {
	sum := sha1.Sum([]byte(s.Entries[i].ID))
	return sum[:]
}

// GetSample loads the features of an entry and pairs
// them with a random caption.
func (s *SampleList) GetSample(i int) (*seq2seq.Sample, error) {
	entry := s.Entries[i]
	features, err := ReadFeatures(FeaturePath(s.FeatureDir, entry.ID))
	if err != nil {
		return nil, essentials.AddCtx("get sample "+entry.ID, err)
	}
	return &seq2seq.Sample{
		Video:   features.Data,
		Caption: entry.Captions[rand.Intn(len(entry.Captions))],
	}, nil
}
