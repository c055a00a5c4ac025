// Package checkpoint saves and restores serialized model
// layers as numbered checkpoint files.
//
// A directory holds files named <prefix>-<step> and a
// "checkpoint" state file which records the most recent
// checkpoint and the ones still retained.
package checkpoint

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// DefaultMaxToKeep is the number of checkpoints retained
// by NewSaver.
const DefaultMaxToKeep = 5

// StateFile is the name of the state file in a
// checkpoint directory.
const StateFile = "checkpoint"

const optimizerSuffix = ".opt"

// A Saver writes and reads checkpoints in a directory.
type Saver struct {
	Dir       string
	Prefix    string
	MaxToKeep int
}

// NewSaver creates a Saver which retains the
// DefaultMaxToKeep most recent checkpoints.
func NewSaver(dir, prefix string) *Saver {
	return &Saver{Dir: dir, Prefix: prefix, MaxToKeep: DefaultMaxToKeep}
}

type state struct {
	Latest string   `json:"latest"`
	All    []string `json:"all"`
}

// Save writes the layers to a new checkpoint for the
// given step and returns its path.
//
// If opt is non-nil, its state is saved alongside the
// layers.
// Checkpoints beyond MaxToKeep are deleted, oldest first.
func (s *Saver) Save(step int, layers []serializer.Serializer,
	opt encoding.BinaryMarshaler) (string, error) {
	path, err := s.save(step, layers, opt)
	if err != nil {
		return "", essentials.AddCtx("save checkpoint", err)
	}
	return path, nil
}

func (s *Saver) save(step int, layers []serializer.Serializer,
	opt encoding.BinaryMarshaler) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%d", s.Prefix, step)
	path := filepath.Join(s.Dir, name)

	objs := append([]serializer.Serializer{serializer.Int(step)}, layers...)
	data, err := serializer.SerializeSlice(objs)
	if err != nil {
		return "", err
	}
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	if opt != nil {
		optData, err := opt.MarshalBinary()
		if err != nil {
			return "", err
		}
		if err := writeFile(path+optimizerSuffix, optData); err != nil {
			return "", err
		}
	}

	st, err := s.readState()
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	st.Latest = name
	var all []string
	for _, old := range st.All {
		if old != name {
			all = append(all, old)
		}
	}
	all = append(all, name)
	for s.MaxToKeep > 0 && len(all) > s.MaxToKeep {
		old := filepath.Join(s.Dir, all[0])
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			return "", err
		}
		if err := os.Remove(old + optimizerSuffix); err != nil && !os.IsNotExist(err) {
			return "", err
		}
		all = all[1:]
	}
	st.All = all
	return path, s.writeState(st)
}

// Restore reads the latest checkpoint and returns its
// step and layers.
//
// If no checkpoint exists, the step is 0 and the layers
// are nil.
// If opt is non-nil and optimizer state was saved, it is
// restored as well.
func (s *Saver) Restore(opt encoding.BinaryUnmarshaler) (int, []serializer.Serializer, error) {
	step, layers, err := s.restore(opt)
	if err != nil {
		return 0, nil, essentials.AddCtx("restore checkpoint", err)
	}
	return step, layers, nil
}

func (s *Saver) restore(opt encoding.BinaryUnmarshaler) (int, []serializer.Serializer, error) {
	st, err := s.readState()
	if os.IsNotExist(err) {
		return 0, nil, nil
	} else if err != nil {
		return 0, nil, err
	}
	if st.Latest == "" {
		return 0, nil, nil
	}
	step, err := ParseStep(st.Latest)
	if err != nil {
		return 0, nil, err
	}
	path := filepath.Join(s.Dir, st.Latest)
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	layers, err := readLayers(data)
	if err != nil {
		return 0, nil, err
	}
	if opt != nil {
		optData, err := ioutil.ReadFile(path + optimizerSuffix)
		if err == nil {
			if err := opt.UnmarshalBinary(optData); err != nil {
				return 0, nil, err
			}
		} else if !os.IsNotExist(err) {
			return 0, nil, err
		}
	}
	return step, layers, nil
}

// Latest returns the path of the most recent checkpoint,
// or "" if there is none.
func (s *Saver) Latest() (string, error) {
	st, err := s.readState()
	if os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", essentials.AddCtx("latest checkpoint", err)
	}
	if st.Latest == "" {
		return "", nil
	}
	return filepath.Join(s.Dir, st.Latest), nil
}

// ParseStep extracts the step from a checkpoint path of
// the form <prefix>-<step>, ignoring any extension.
func ParseStep(path string) (int, error) {
	name := filepath.Base(path)
	for i, ch := range name {
		if ch != '-' {
			continue
		}
		num := name[i+1:]
		if dot := strings.Index(num, "."); dot >= 0 {
			num = num[:dot]
		}
		if step, err := strconv.Atoi(num); err == nil && step >= 0 {
			return step, nil
		}
	}
	return 0, fmt.Errorf("parse step: malformed checkpoint name: %s", name)
}

func readLayers(data []byte) ([]serializer.Serializer, error) {
	objs, err := serializer.DeserializeSlice(data)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, errors.New("checkpoint header missing")
	}
	if _, ok := objs[0].(serializer.Int); !ok {
		return nil, fmt.Errorf("checkpoint header: unexpected type %T", objs[0])
	}
	return objs[1:], nil
}

func (s *Saver) readState() (*state, error) {
	data, err := ioutil.ReadFile(filepath.Join(s.Dir, StateFile))
	if err != nil {
		return &state{}, err
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return &state{}, err
	}
	return &st, nil
}

func (s *Saver) writeState(st *state) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.Dir, StateFile), data)
}

func writeFile(path string, data []byte) error {
	temp := path + ".tmp"
	if err := ioutil.WriteFile(temp, data, 0644); err != nil {
		return err
	}
	return os.Rename(temp, path)
}
