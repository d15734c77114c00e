package reactive

import "testing"

func TestComputedEvaluatesLazily(t *testing.T) {
	o := Observe(map[string]any{"price": 10, "qty": 3}).(*Object)

	evals := 0
	total := NewComputed(func() any {
		evals++
		return o.Get("price").(int) * o.Get("qty").(int)
	})
	defer total.Teardown()

	if evals != 0 {
		t.Fatalf("computed evaluated at construction, evals = %d", evals)
	}
	if !total.Dirty() {
		t.Fatal("fresh computed should be dirty")
	}

	if got := total.Value(); got != 30 {
		t.Fatalf("Value() = %v, want 30", got)
	}
	if evals != 1 {
		t.Fatalf("evals = %d, want 1", evals)
	}

	// Repeated reads without intervening writes hit the cache.
	total.Value()
	total.Value()
	if evals != 1 {
		t.Errorf("cached reads re-evaluated, evals = %d", evals)
	}
}

func TestComputedRecomputesOnlyWhenRead(t *testing.T) {
	o := Observe(map[string]any{"n": 1}).(*Object)

	evals := 0
	doubled := NewComputed(func() any {
		evals++
		return o.Get("n").(int) * 2
	})
	defer doubled.Teardown()

	doubled.Value()

	// A dependency change only flips the dirty flag.
	o.Set("n", 2)
	o.Set("n", 3)
	if evals != 1 {
		t.Fatalf("dependency change eagerly recomputed, evals = %d", evals)
	}
	if !doubled.Dirty() {
		t.Fatal("computed should be dirty after dependency change")
	}

	if got := doubled.Value(); got != 6 {
		t.Errorf("Value() = %v, want 6", got)
	}
	if evals != 2 {
		t.Errorf("evals = %d, want 2", evals)
	}
}

func TestComputedOfComputed(t *testing.T) {
	o := Observe(map[string]any{"n": 2}).(*Object)

	squared := NewComputed(func() any {
		n := o.Get("n").(int)
		return n * n
	})
	defer squared.Teardown()

	plusOne := NewComputed(func() any {
		return squared.Value().(int) + 1
	})
	defer plusOne.Teardown()

	if got := plusOne.Value(); got != 5 {
		t.Fatalf("Value() = %v, want 5", got)
	}

	o.Set("n", 3)
	if got := plusOne.Value(); got != 10 {
		t.Errorf("Value() after write = %v, want 10", got)
	}
}

func TestComputedTeardownStopsInvalidation(t *testing.T) {
	o := Observe(map[string]any{"n": 1}).(*Object)
	cell := o.cells["n"]

	c := NewComputed(func() any { return o.Get("n") })
	c.Value()
	if cell.subCount() != 1 {
		t.Fatalf("subCount = %d, want 1", cell.subCount())
	}

	c.Teardown()
	if cell.subCount() != 0 {
		t.Errorf("subCount after teardown = %d, want 0", cell.subCount())
	}
}
