package seq_test

import (
	"errors"
	"slices"
	"testing"

	"hotel_rooms/internal/seq"
)

func TestList_AppendGetSet(t *testing.T) {
	l := seq.New[string]()
	l.Append("a")
	l.Append("b")
	l.Append("a")

	if l.Len() != 3 {
		t.Fatalf("len: %d", l.Len())
	}
	v, err := l.Get(1)
	if err != nil || v != "b" {
		t.Fatalf("get(1) = %q, %v", v, err)
	}
	if err := l.Set(1, "c"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := l.Slice(); !slices.Equal(got, []string{"a", "c", "a"}) {
		t.Fatalf("unexpected items: %v", got)
	}

	for _, i := range []int{-1, 3} {
		if _, err := l.Get(i); !errors.Is(err, seq.ErrOutOfRange) {
			t.Fatalf("get(%d): expected ErrOutOfRange, got %v", i, err)
		}
		if err := l.Set(i, "x"); !errors.Is(err, seq.ErrOutOfRange) {
			t.Fatalf("set(%d): expected ErrOutOfRange, got %v", i, err)
		}
	}
}

func TestList_RemoveFirst(t *testing.T) {
	l := seq.From([]int{1, 2, 3, 2})
	if !seq.RemoveFirst(l, 2) {
		t.Fatalf("expected removal")
	}
	if got := l.Slice(); !slices.Equal(got, []int{1, 3, 2}) {
		t.Fatalf("only the first match should go: %v", got)
	}
	if seq.RemoveFirst(l, 9) {
		t.Fatalf("no element 9 to remove")
	}
	if seq.RemoveFirst(seq.New[int](), 1) {
		t.Fatalf("empty list removal must be a no-op")
	}
	if l.RemoveFirstFunc(nil) {
		t.Fatalf("nil target must be a no-op")
	}
}

func TestList_FilterIsIndependent(t *testing.T) {
	src := seq.From([]int{5, 1, 4, 2, 3})
	even := src.Filter(func(v int) bool { return v%2 == 0 })

	if got := even.Slice(); !slices.Equal(got, []int{4, 2}) {
		t.Fatalf("filter order: %v", got)
	}
	even.Append(8)
	if src.Len() != 5 {
		t.Fatalf("source mutated: %v", src.Slice())
	}
}

func TestList_CloneAndIteration(t *testing.T) {
	src := seq.From([]int{1, 2, 3})
	cp := src.Clone()
	_ = cp.Set(0, 100)
	if v, _ := src.Get(0); v != 1 {
		t.Fatalf("clone shares storage")
	}

	// iteration restarts from the beginning every time
	for range 2 {
		var got []int
		for v := range src.Values() {
			got = append(got, v)
		}
		if !slices.Equal(got, []int{1, 2, 3}) {
			t.Fatalf("iteration: %v", got)
		}
	}

	var nilList *seq.List[int]
	if nilList.Len() != 0 || len(nilList.Slice()) != 0 || nilList.Clone().Len() != 0 {
		t.Fatalf("nil list should behave as empty")
	}
}
