// Package dataset reads the files that describe a video
// captioning corpus and writes caption results.
package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/unixpickle/essentials"
)

// Special tokens which every dictionary must contain.
const (
	BOSToken = "<BOS>"
	EOSToken = "<EOS>"
	UNKToken = "<UNK>"
)

// A Dictionary is a bijection between tokens and indices.
type Dictionary struct {
	tokens []string
	index  map[string]int
}

// NewDictionary creates a dictionary from an ordered
// list of unique tokens.
func NewDictionary(tokens []string) (*Dictionary, error) {
	d := &Dictionary{
		tokens: append([]string{}, tokens...),
		index:  map[string]int{},
	}
	for i, tok := range d.tokens {
		if _, ok := d.index[tok]; ok {
			return nil, fmt.Errorf("new dictionary: duplicate token %q", tok)
		}
		d.index[tok] = i
	}
	for _, special := range []string{BOSToken, EOSToken, UNKToken} {
		if _, ok := d.index[special]; !ok {
			return nil, fmt.Errorf("new dictionary: missing %s", special)
		}
	}
	return d, nil
}

// ReadDictionary reads a dictionary file with one token
// per line.
// The line number of a token is its index.
func ReadDictionary(path string) (*Dictionary, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, essentials.AddCtx("read dictionary", err)
	}
	d, err := NewDictionary(lines)
	if err != nil {
		return nil, essentials.AddCtx("read dictionary", err)
	}
	return d, nil
}

// Size returns the number of tokens.
func (d *Dictionary) Size() int {
	return len(d.tokens)
}

// Lookup returns the index of a token, or the index of
// UNKToken if the token is unknown.
func (d *Dictionary) Lookup(token string) int {
	if idx, ok := d.index[token]; ok {
		return idx
	}
	return d.index[UNKToken]
}

// Token returns the token for an index.
func (d *Dictionary) Token(idx int) string {
	return d.tokens[idx]
}

// BOS returns the index of BOSToken.
func (d *Dictionary) BOS() int {
	return d.index[BOSToken]
}

// EOS returns the index of EOSToken.
func (d *Dictionary) EOS() int {
	return d.index[EOSToken]
}

// UNK returns the index of UNKToken.
func (d *Dictionary) UNK() int {
	return d.index[UNKToken]
}

// Words converts indices to tokens, dropping BOS and
// stopping at the first EOS.
func (d *Dictionary) Words(indices []int) []string {
	res := []string{}
	for _, idx := range indices {
		if idx == d.EOS() {
			break
		} else if idx != d.BOS() {
			res = append(res, d.Token(idx))
		}
	}
	return res
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var res []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		res = append(res, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
