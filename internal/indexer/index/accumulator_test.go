package index

import (
	"reflect"
	"sort"
	"testing"
)

func TestAccumulatorAdd(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(1, "search")
	acc.Add(1, "search")
	acc.Add(2, "search")
	acc.Add(1, "engine")

	if got := acc.TermCount(); got != 2 {
		t.Errorf("TermCount() = %d, want 2", got)
	}
	if got := acc.Pairs(); got != 3 {
		t.Errorf("Pairs() = %d, want 3", got)
	}
	if got := acc.DocCount(); got != 2 {
		t.Errorf("DocCount() = %d, want 2", got)
	}
}

func TestAccumulatorSnapshotOrdering(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(5, "zebra")
	acc.Add(3, "apple")
	acc.Add(1, "apple")
	acc.Add(2, "mango")
	acc.Add(1, "apple")

	entries := acc.Snapshot()
	if len(entries) != 3 {
		t.Fatalf("Snapshot() returned %d entries, want 3", len(entries))
	}
	if !sort.SliceIsSorted(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	}) {
		t.Errorf("entries not in ascending term order: %v", entries)
	}
	for _, e := range entries {
		if !sort.SliceIsSorted(e.Postings, func(i, j int) bool {
			return e.Postings[i].Doc < e.Postings[j].Doc
		}) {
			t.Errorf("postings for %q not in ascending doc order: %v", e.Term, e.Postings)
		}
		if e.DocFreq != len(e.Postings) {
			t.Errorf("term %q: DocFreq %d != posting count %d", e.Term, e.DocFreq, len(e.Postings))
		}
	}

	apple := entries[0]
	want := PostingList{{Doc: 1, Freq: 2}, {Doc: 3, Freq: 1}}
	if apple.Term != "apple" || !reflect.DeepEqual(apple.Postings, want) {
		t.Errorf("apple entry = %+v, want postings %v", apple, want)
	}
}

func TestAccumulatorSnapshotDoesNotMutate(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(1, "term")
	before := acc.Pairs()
	acc.Snapshot()
	if acc.Pairs() != before || acc.Empty() {
		t.Error("Snapshot() mutated the accumulator")
	}
}

func TestAccumulatorSizeGrows(t *testing.T) {
	acc := NewAccumulator()
	if acc.Size() != 0 {
		t.Errorf("empty accumulator has size %d", acc.Size())
	}
	acc.Add(1, "first")
	after1 := acc.Size()
	acc.Add(2, "second")
	after2 := acc.Size()
	if after1 <= 0 || after2 <= after1 {
		t.Errorf("size did not grow: %d then %d", after1, after2)
	}
	// A repeated (term, doc) pair costs no extra tracked bytes.
	acc.Add(1, "first")
	if acc.Size() != after2 {
		t.Errorf("repeat occurrence changed size: %d -> %d", after2, acc.Size())
	}
}

func TestAccumulatorReset(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(1, "term")
	acc.Reset()
	if !acc.Empty() || acc.Size() != 0 || acc.Pairs() != 0 || acc.DocCount() != 0 {
		t.Errorf("Reset() left state behind: size=%d pairs=%d docs=%d", acc.Size(), acc.Pairs(), acc.DocCount())
	}
}
