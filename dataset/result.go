package dataset

import (
	"encoding/json"
	"io/ioutil"

	"github.com/unixpickle/essentials"
)

// A Result is the generated caption for one video.
//
// The fields are ordered so that the JSON keys come out
// sorted.
type Result struct {
	Caption []string `json:"caption"`
	ID      string   `json:"id"`
}

// WriteResults writes results as an indented JSON list.
func WriteResults(path string, results []*Result) error {
	if results == nil {
		results = []*Result{}
	}
	data, err := json.MarshalIndent(results, "", "    ")
	if err != nil {
		return essentials.AddCtx("write results", err)
	}
	if err := ioutil.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return essentials.AddCtx("write results", err)
	}
	return nil
}
