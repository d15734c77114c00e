package reactive

import (
	"testing"
)

func TestListMutatorsNotifyOnce(t *testing.T) {
	l := Observe([]any{1, 2, 3}).(*List)

	runs, _ := syncRunCounter(t, func() {
		l.Len()
	})

	steps := []struct {
		name string
		op   func()
	}{
		{"Append", func() { l.Append(4, 5, 6) }},
		{"Insert", func() { l.Insert(0, 0) }},
		{"RemoveAt", func() { l.RemoveAt(0) }},
		{"SetAt", func() { l.SetAt(0, 10) }},
		{"Splice", func() { l.Splice(1, 2, "a", "b", "c") }},
		{"Sort", func() { l.Sort(func(a, b any) bool { return lessAny(a, b) }) }},
		{"Reverse", func() { l.Reverse() }},
	}

	want := *runs
	for _, step := range steps {
		step.op()
		want++
		if *runs != want {
			t.Fatalf("%s: runs = %d, want %d (exactly one notification per mutator)",
				step.name, *runs, want)
		}
	}
}

func lessAny(a, b any) bool {
	ai, aok := a.(int)
	bi, bok := b.(int)
	if aok && bok {
		return ai < bi
	}
	// Ints sort before strings; strings compare lexically.
	as, sok := a.(string)
	bs, tok := b.(string)
	if sok && tok {
		return as < bs
	}
	return aok
}

func TestListNoopsDoNotNotify(t *testing.T) {
	l := Observe([]any{1, 2}).(*List)

	runs, _ := syncRunCounter(t, func() {
		l.Len()
	})

	l.RemoveAt(99)
	l.RemoveAt(-1)
	l.SetAt(99, 0)
	l.SetAt(0, 1) // equal value
	l.Append()

	if *runs != 1 {
		t.Errorf("no-op mutations notified, runs = %d", *runs)
	}
}

func TestListSpliceClamps(t *testing.T) {
	l := Observe([]any{1, 2, 3}).(*List)

	l.Splice(10, 5, 4)
	got := l.Values()
	want := []any{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want %v", got, want)
		}
	}

	l.Splice(1, 100)
	if l.Len() != 1 || l.At(0) != 1 {
		t.Errorf("after removing tail, Values() = %v", l.Values())
	}
}

func TestListWrapsInsertedElements(t *testing.T) {
	l := Observe([]any{}).(*List)
	l.Append(map[string]any{"done": false})

	row, ok := l.At(0).(*Object)
	if !ok {
		t.Fatalf("appended map not wrapped, got %T", l.At(0))
	}

	runs, _ := syncRunCounter(t, func() {
		row.Get("done")
	})
	row.Set("done", true)
	if *runs != 2 {
		t.Errorf("element property not tracked, runs = %d", *runs)
	}
}

func TestListAtTracksElementShape(t *testing.T) {
	l := Observe([]any{map[string]any{"n": 1}}).(*List)

	runs, _ := syncRunCounter(t, func() {
		l.At(0)
	})

	// At subscribes to the element's shape, so a structural change inside
	// the element notifies even without reading any of its keys.
	l.At(0).(*Object).Declare("extra", true)
	if *runs != 2 {
		t.Errorf("element shape change not tracked, runs = %d", *runs)
	}
}

func TestListReverseAndSort(t *testing.T) {
	l := Observe([]any{3, 1, 2}).(*List)

	l.Sort(func(a, b any) bool { return a.(int) < b.(int) })
	if got := l.Values(); got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("after Sort, Values() = %v", got)
	}

	l.Reverse()
	if got := l.Values(); got[0] != 3 || got[1] != 2 || got[2] != 1 {
		t.Errorf("after Reverse, Values() = %v", got)
	}
}
