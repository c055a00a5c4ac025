package capsgd

import (
	"crypto/sha1"
	"sort"
	"strconv"
	"testing"
)

type hashList []string

func (h hashList) Len() int {
	return len(h)
}

func (h hashList) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h hashList) Slice(i, j int) SampleList {
	return h[i:j]
}

func (h hashList) Hash(i int) []byte {
	sum := sha1.Sum([]byte(h[i]))
	return sum[:]
}

func TestHashSplit(t *testing.T) {
	var list hashList
	for i := 0; i < 1000; i++ {
		list = append(list, "video"+strconv.Itoa(i))
	}
	left, right := HashSplit(list, 0.3)
	if left.Len()+right.Len() != 1000 {
		t.Fatalf("lost samples: %d + %d", left.Len(), right.Len())
	}
	if left.Len() < 200 || left.Len() > 400 {
		t.Errorf("unexpected left size: %d", left.Len())
	}

	var shuffled hashList
	for i := 999; i >= 0; i-- {
		shuffled = append(shuffled, "video"+strconv.Itoa(i))
	}
	left2, _ := HashSplit(shuffled, 0.3)
	names1 := append([]string{}, left.(hashList)...)
	names2 := append([]string{}, left2.(hashList)...)
	sort.Strings(names1)
	sort.Strings(names2)
	if len(names1) != len(names2) {
		t.Fatal("split depends on order")
	}
	for i, x := range names1 {
		if names2[i] != x {
			t.Fatal("split depends on order")
		}
	}
}

func TestHashPrefix(t *testing.T) {
	if x := hashPrefix([]byte{1}); x != 1<<56 {
		t.Errorf("short hash: got %d", x)
	}
	if x := hashPrefix([]byte{0, 0, 0, 0, 0, 0, 0, 2, 0xff}); x != 2 {
		t.Errorf("long hash: got %d", x)
	}
}
