package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/unixpickle/vidcap/capsgd"
)

func TestDictionary(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "dictionary.txt")
	writeFile(t, path, "<BOS>\n<EOS>\n<UNK>\na\nman\nis\nrunning\n")

	d, err := ReadDictionary(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.Size() != 7 {
		t.Errorf("expected 7 tokens but got %d", d.Size())
	}
	if d.BOS() != 0 || d.EOS() != 1 || d.UNK() != 2 {
		t.Errorf("unexpected special tokens: %d %d %d", d.BOS(), d.EOS(), d.UNK())
	}
	if d.Lookup("man") != 4 || d.Token(4) != "man" {
		t.Error("lookup failed")
	}
	if d.Lookup("dog") != d.UNK() {
		t.Error("unknown token should map to UNK")
	}
	words := d.Words([]int{0, 3, 4, 5, 6, 1, 3})
	if !reflect.DeepEqual(words, []string{"a", "man", "is", "running"}) {
		t.Errorf("unexpected words: %v", words)
	}

	writeFile(t, path, "<BOS>\n<EOS>\nword\n")
	if _, err := ReadDictionary(path); err == nil {
		t.Error("expected error for missing <UNK>")
	}
}

func TestReadLabelsAndIDs(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	labelPath := filepath.Join(dir, "labels.json")
	writeFile(t, labelPath, `{"vid2": [[0, 3, 1]], "vid1": [[0, 4, 1], [0, 5, 6, 1]]}`)
	labels, err := ReadLabels(labelPath)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(labels.IDs(), []string{"vid1", "vid2"}) {
		t.Errorf("unexpected IDs: %v", labels.IDs())
	}
	if !reflect.DeepEqual(labels["vid1"][1], []int{0, 5, 6, 1}) {
		t.Errorf("unexpected caption: %v", labels["vid1"][1])
	}

	idPath := filepath.Join(dir, "ids.txt")
	writeFile(t, idPath, "vid3\nvid1\n\n")
	ids, err := ReadIDs(idPath)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"vid3", "vid1"}) {
		t.Errorf("unexpected IDs: %v", ids)
	}
}

func TestReadFeatures(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	values := []float64{1, 2.5, -3, 4, 5, 6}
	for _, kind := range []string{"<f4", "<f8"} {
		path := filepath.Join(dir, "video.npy")
		writeNpy(t, path, kind, 2, 3, values)
		f, err := ReadFeatures(path)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if f.Steps != 2 || f.Dim != 3 {
			t.Errorf("%s: unexpected shape %dx%d", kind, f.Steps, f.Dim)
		}
		if !reflect.DeepEqual(f.Data, values) {
			t.Errorf("%s: expected %v but got %v", kind, values, f.Data)
		}
	}
}

func TestSampleList(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	labels := Labels{
		"b": {{0, 3, 1}},
		"a": {{0, 4, 1}},
		"c": {},
	}
	writeNpy(t, FeaturePath(dir, "a"), "<f8", 2, 2, []float64{1, 2, 3, 4})
	writeNpy(t, FeaturePath(dir, "b"), "<f8", 2, 2, []float64{5, 6, 7, 8})

	list := NewSampleList(dir, labels)
	if list.Len() != 2 {
		t.Fatalf("expected 2 entries but got %d", list.Len())
	}
	sample, err := list.GetSample(1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sample.Video, []float64{5, 6, 7, 8}) {
		t.Errorf("unexpected video: %v", sample.Video)
	}
	if !reflect.DeepEqual(sample.Caption, []int{0, 3, 1}) {
		t.Errorf("unexpected caption: %v", sample.Caption)
	}

	var _ capsgd.Hasher = list
	sliced := list.Slice(0, 1).(*SampleList)
	sliced.Entries[0] = &Entry{ID: "missing", Captions: [][]int{{0}}}
	if list.Entries[0].ID != "a" {
		t.Error("Slice should copy entries")
	}
	if _, err := sliced.GetSample(0); err == nil {
		t.Error("expected error for missing features")
	}
}

func TestWriteResults(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "result.json")
	results := []*Result{{Caption: []string{"a", "man"}, ID: "vid1"}}
	if err := WriteResults(path, results); err != nil {
		t.Fatal(err)
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	expected := strings.Join([]string{
		"[",
		"    {",
		`        "caption": [`,
		`            "a",`,
		`            "man"`,
		"        ],",
		`        "id": "vid1"`,
		"    }",
		"]",
		"",
	}, "\n")
	if string(data) != expected {
		t.Errorf("unexpected output:\n%s", data)
	}
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "dataset")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func writeFile(t *testing.T, path, contents string) {
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
}

// writeNpy writes a version 1.0 .npy file.
func writeNpy(t *testing.T, path, kind string, rows, cols int, values []float64) {
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%d, %d), }",
		kind, rows, cols)
	for (10+len(header)+1)%64 != 0 {
		header += " "
	}
	header += "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.Write([]byte{1, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	for _, x := range values {
		if kind == "<f4" {
			binary.Write(&buf, binary.LittleEndian, math.Float32bits(float32(x)))
		} else {
			binary.Write(&buf, binary.LittleEndian, math.Float64bits(x))
		}
	}
	if err := ioutil.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}
