package reactive

import (
	"errors"
	"testing"

	serrors "github.com/strand-ui/strand/internal/errors"
)

func nestedUserObject() *Object {
	return Observe(map[string]any{
		"user": map[string]any{
			"profile": map[string]any{
				"name": "ada",
				"age":  36,
			},
		},
	}).(*Object)
}

func TestWatchDottedPath(t *testing.T) {
	o := nestedUserObject()

	var calls [][2]any
	stop, err := o.Watch("user.profile.name", func(newValue, oldValue any) {
		calls = append(calls, [2]any{newValue, oldValue})
	}, WatchOptions{Sync: true})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	o.Get("user").(*Object).
		Get("profile").(*Object).
		Set("name", "grace")

	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0][0] != "grace" || calls[0][1] != "ada" {
		t.Errorf("callback saw (%v, %v), want (grace, ada)", calls[0][0], calls[0][1])
	}
}

func TestWatchIsolatedFromSiblings(t *testing.T) {
	o := nestedUserObject()

	calls := 0
	stop, err := o.Watch("user.profile.name", func(newValue, oldValue any) {
		calls++
	}, WatchOptions{Sync: true})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	// A sibling property under the same parent must not trigger the watch.
	o.Get("user").(*Object).
		Get("profile").(*Object).
		Set("age", 37)

	if calls != 0 {
		t.Errorf("sibling write triggered watch, calls = %d", calls)
	}
}

func TestWatchMissingSegmentYieldsNil(t *testing.T) {
	o := nestedUserObject()

	var seen []any
	stop, err := o.Watch("user.missing.leaf", func(newValue, oldValue any) {
		seen = append(seen, newValue)
	}, WatchOptions{Sync: true})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	// The path dead-ends at a missing key; no panic, no callback.
	o.Get("user").(*Object).Set("profile", nil)
	if len(seen) != 0 {
		t.Errorf("callback fired for unrelated write, seen = %v", seen)
	}
}

func TestWatchImmediate(t *testing.T) {
	o := nestedUserObject()

	var calls [][2]any
	stop, err := o.Watch("user.profile.name", func(newValue, oldValue any) {
		calls = append(calls, [2]any{newValue, oldValue})
	}, WatchOptions{Sync: true, Immediate: true})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	if len(calls) != 1 {
		t.Fatalf("immediate call count = %d, want 1", len(calls))
	}
	if calls[0][0] != "ada" || calls[0][1] != nil {
		t.Errorf("immediate callback saw (%v, %v), want (ada, <nil>)", calls[0][0], calls[0][1])
	}
}

func TestWatchDeep(t *testing.T) {
	o := nestedUserObject()

	calls := 0
	stop, err := o.Watch("user", func(newValue, oldValue any) {
		calls++
	}, WatchOptions{Sync: true, Deep: true})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	o.Get("user").(*Object).
		Get("profile").(*Object).
		Set("name", "grace")

	if calls != 1 {
		t.Errorf("deep watch missed nested mutation, calls = %d", calls)
	}
}

func TestWatchRejectsComplexExpressions(t *testing.T) {
	o := nestedUserObject()

	for _, path := range []string{
		"",
		"user..profile",
		"user.profile.",
		".user",
		"user[0]",
		"user.profile name",
		"a+b",
	} {
		stop, err := o.Watch(path, func(newValue, oldValue any) {})
		if err == nil {
			stop()
			t.Errorf("Watch(%q) accepted, want error", path)
			continue
		}
		if !errors.Is(err, ErrBadWatchPath) {
			t.Errorf("Watch(%q) error = %v, want ErrBadWatchPath", path, err)
		}
		var se *serrors.Error
		if !errors.As(err, &se) || se.Code != serrors.CodeBadWatchPath {
			t.Errorf("Watch(%q) error missing code %s: %v", path, serrors.CodeBadWatchPath, err)
		}
	}
}

func TestWatchStop(t *testing.T) {
	o := nestedUserObject()

	calls := 0
	stop, err := o.Watch("user.profile.name", func(newValue, oldValue any) {
		calls++
	}, WatchOptions{Sync: true})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	profile := o.Get("user").(*Object).Get("profile").(*Object)
	profile.Set("name", "grace")
	stop()
	profile.Set("name", "joan")

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (stop must end delivery)", calls)
	}
}

func TestWatchFnGetter(t *testing.T) {
	o := Observe(map[string]any{"a": 1, "b": 2}).(*Object)

	var sums []any
	stop := WatchFn(
		func() any { return o.Get("a").(int) + o.Get("b").(int) },
		func(newValue, oldValue any) { sums = append(sums, newValue) },
		WatchOptions{Sync: true},
	)
	defer stop()

	o.Set("a", 10)
	if len(sums) != 1 || sums[0] != 12 {
		t.Errorf("sums = %v, want [12]", sums)
	}
}
