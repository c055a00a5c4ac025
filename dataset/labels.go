package dataset

import (
	"encoding/json"
	"io/ioutil"
	"sort"
	"strings"

	"github.com/unixpickle/essentials"
)

// Labels maps each training video ID to its reference
// captions, given as token indices.
type Labels map[string][][]int

// ReadLabels reads a JSON label file of the form
// {"video_id": [[tok, ...], ...]}.
func ReadLabels(path string) (Labels, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, essentials.AddCtx("read labels", err)
	}
	var res Labels
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, essentials.AddCtx("read labels", err)
	}
	return res, nil
}

// IDs returns the video IDs in sorted order.
func (l Labels) IDs() []string {
	var res []string
	for id := range l {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}

// ReadIDs reads a file with one video ID per line.
// Blank lines are ignored.
func ReadIDs(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, essentials.AddCtx("read IDs", err)
	}
	var res []string
	for _, line := range lines {
		if id := strings.TrimSpace(line); id != "" {
			res = append(res, id)
		}
	}
	return res, nil
}
