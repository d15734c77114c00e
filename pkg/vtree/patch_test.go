package vtree

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mountList mounts a keyed list of single-text items and returns the
// recorder, patcher and the mounted tree.
func mountList(t *testing.T, keys ...string) (*Recorder, *Patcher, *VNode) {
	t.Helper()
	rec := NewRecorder()
	pt := New(rec)
	tree := keyedList(keys...)
	pt.MountAt(rec.Body(), tree)
	rec.ResetCounts()
	return rec, pt, tree
}

func keyedList(keys ...string) *VNode {
	children := make([]*VNode, len(keys))
	for i, k := range keys {
		children[i] = El("li", nil, Text(k)).WithKey(k)
	}
	return El("ul", nil, children...)
}

func renderOrder(rec *Recorder) string {
	s := rec.Render()
	s = strings.ReplaceAll(s, "<ul>", "")
	s = strings.ReplaceAll(s, "</ul>", "")
	s = strings.ReplaceAll(s, "<li>", "")
	s = strings.ReplaceAll(s, "</li>", "")
	return s
}

func TestMountMaterializesTree(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)

	tree := El("div", Attrs{"id": "app"},
		El("h1", nil, Text("hello")),
		Comment("marker"),
		Empty(),
	)
	pt.MountAt(rec.Body(), tree)

	want := `<div id="app"><h1>hello</h1><!--marker--><!----></div>`
	if got := rec.Render(); got != want {
		t.Errorf("Render() = %s, want %s", got, want)
	}
	if tree.Ref == nil {
		t.Error("root Ref not recorded")
	}
}

func TestPatchIdenticalTreeIsZeroOps(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)

	build := func() *VNode {
		return El("div", Attrs{"class": "box"},
			El("span", nil, Text("a")),
			Text("b"),
		)
	}

	old := build()
	pt.MountAt(rec.Body(), old)
	rec.ResetCounts()

	pt.Patch(old, build())

	if diff := cmp.Diff(OpCounts{}, rec.Counts()); diff != "" {
		t.Errorf("identical patch applied ops (-want +got):\n%s", diff)
	}
}

func TestTextChangeIsSingleWrite(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)

	old := El("div", nil, Text("a"), Text("b"))
	pt.MountAt(rec.Body(), old)
	rec.ResetCounts()

	pt.Patch(old, El("div", nil, Text("a"), Text("c")))

	want := OpCounts{TextWrites: 1}
	if diff := cmp.Diff(want, rec.Counts()); diff != "" {
		t.Errorf("unexpected ops (-want +got):\n%s", diff)
	}
	if got := rec.Render(); got != "<div>ac</div>" {
		t.Errorf("Render() = %s", got)
	}
}

func TestAttrDiff(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)

	old := El("div", Attrs{"id": "x", "class": "a", "title": "keep"})
	pt.MountAt(rec.Body(), old)
	rec.ResetCounts()

	pt.Patch(old, El("div", Attrs{"class": "b", "title": "keep", "role": "main"}))

	// id removed, class changed, role added, title untouched.
	want := OpCounts{AttrSets: 2, AttrRemoves: 1}
	if diff := cmp.Diff(want, rec.Counts()); diff != "" {
		t.Errorf("unexpected ops (-want +got):\n%s", diff)
	}
	if got := rec.Render(); got != `<div class="b" role="main" title="keep"></div>` {
		t.Errorf("Render() = %s", got)
	}
}

func TestKeyAttrNeverReachesPlatform(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)

	old := El("div", Attrs{"key": "k1", "id": "x"})
	pt.MountAt(rec.Body(), old)

	if got := rec.Render(); strings.Contains(got, "key=") {
		t.Errorf("key leaked into platform attrs: %s", got)
	}

	rec.ResetCounts()
	pt.Patch(old, El("div", Attrs{"key": "k2", "id": "x"}))
	if got := rec.Counts().AttrSets; got != 0 {
		t.Errorf("key churn produced %d attr sets", got)
	}
}

func TestTagChangeReplacesSubtree(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)

	old := El("div", nil, Text("content"))
	pt.MountAt(rec.Body(), old)
	rec.ResetCounts()

	pt.Patch(old, El("section", nil, Text("content")))

	counts := rec.Counts()
	if counts.Removes != 1 {
		t.Errorf("Removes = %d, want 1", counts.Removes)
	}
	if counts.Creates != 1 || counts.TextCreates != 1 {
		t.Errorf("Creates = %d TextCreates = %d, want 1 and 1",
			counts.Creates, counts.TextCreates)
	}
	if got := rec.Render(); got != "<section>content</section>" {
		t.Errorf("Render() = %s", got)
	}
}

func TestKeyedRotationMovesWithoutRebuilding(t *testing.T) {
	rec, pt, old := mountList(t, "1", "2", "3")

	pt.Patch(old, keyedList("3", "1", "2"))

	counts := rec.Counts()
	if counts.Creates != 0 || counts.TextCreates != 0 || counts.Removes != 0 {
		t.Errorf("rotation rebuilt nodes: %+v", counts)
	}
	if got := renderOrder(rec); got != "312" {
		t.Errorf("order = %s, want 312", got)
	}
}

func TestKeyedReversalMovesWithoutRebuilding(t *testing.T) {
	rec, pt, old := mountList(t, "1", "2", "3", "4")

	pt.Patch(old, keyedList("4", "3", "2", "1"))

	counts := rec.Counts()
	if counts.Creates != 0 || counts.TextCreates != 0 || counts.Removes != 0 {
		t.Errorf("reversal rebuilt nodes: %+v", counts)
	}
	if got := renderOrder(rec); got != "4321" {
		t.Errorf("order = %s, want 4321", got)
	}
}

func TestKeyedScrambleFallsBackToKeyMap(t *testing.T) {
	rec, pt, old := mountList(t, "a", "b", "c", "d")

	// No head or tail alignment: forces the key-map path for "b".
	pt.Patch(old, keyedList("b", "a", "d", "c"))

	counts := rec.Counts()
	if counts.Creates != 0 || counts.TextCreates != 0 || counts.Removes != 0 {
		t.Errorf("scramble rebuilt nodes: %+v", counts)
	}
	if got := renderOrder(rec); got != "badc" {
		t.Errorf("order = %s, want badc", got)
	}
}

func TestKeyedPrependAndAppend(t *testing.T) {
	rec, pt, old := mountList(t, "b", "c")

	next := keyedList("a", "b", "c", "d")
	pt.Patch(old, next)

	counts := rec.Counts()
	if counts.Creates != 2 || counts.TextCreates != 2 {
		t.Errorf("expected exactly the two new items built: %+v", counts)
	}
	if got := renderOrder(rec); got != "abcd" {
		t.Errorf("order = %s, want abcd", got)
	}
}

func TestKeyedRemovalIsBulk(t *testing.T) {
	rec, pt, old := mountList(t, "a", "b", "c", "d")

	pt.Patch(old, keyedList("a", "d"))

	counts := rec.Counts()
	if counts.Removes != 2 {
		t.Errorf("Removes = %d, want 2", counts.Removes)
	}
	if counts.Creates != 0 || counts.TextCreates != 0 {
		t.Errorf("removal created nodes: %+v", counts)
	}
	if got := renderOrder(rec); got != "ad" {
		t.Errorf("order = %s, want ad", got)
	}
}

func TestKeyReuseAcrossTagsRebuilds(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)

	old := El("ul", nil,
		El("li", nil, Text("x")).WithKey("k"),
		El("li", nil, Text("y")).WithKey("other"),
	)
	pt.MountAt(rec.Body(), old)
	rec.ResetCounts()

	// Same key, different tag: not the same node.
	next := El("ul", nil,
		El("p", nil, Text("x")).WithKey("k"),
		El("li", nil, Text("y")).WithKey("other"),
	)
	pt.Patch(old, next)

	counts := rec.Counts()
	if counts.Creates != 1 || counts.Removes != 1 {
		t.Errorf("tag change under reused key: %+v", counts)
	}
	if got := rec.Render(); got != "<ul><p>x</p><li>y</li></ul>" {
		t.Errorf("Render() = %s", got)
	}
}

func TestPendingFlagForcesReplacement(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)

	old := El("div", nil, Text("placeholder"))
	old.Pending = true
	pt.MountAt(rec.Body(), old)
	rec.ResetCounts()

	next := El("div", nil, Text("resolved"))
	pt.Patch(old, next)

	// Pending differs, so the node is rebuilt rather than patched.
	counts := rec.Counts()
	if counts.Creates != 1 {
		t.Errorf("pending transition did not rebuild: %+v", counts)
	}
	if got := rec.Render(); got != "<div>resolved</div>" {
		t.Errorf("Render() = %s", got)
	}
}

func TestDuplicateKeyDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rec := NewRecorder()
	pt := New(rec, WithLogger(logger), WithDevChecks())

	old := keyedList("a", "b")
	pt.MountAt(rec.Body(), old)

	next := El("ul", nil,
		El("li", nil, Text("x")).WithKey("dup"),
		El("li", nil, Text("y")).WithKey("dup"),
	)
	pt.Patch(old, next)

	if !strings.Contains(buf.String(), "duplicate key") {
		t.Errorf("duplicate keys not diagnosed, log: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "E004") {
		t.Errorf("diagnostic missing error code, log: %s", buf.String())
	}
}

func TestPatchNilOldMaterializes(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)

	root := pt.Patch(nil, El("div", nil))
	if root == nil {
		t.Fatal("Patch(nil, new) returned nil root")
	}
	// Created detached; nothing inserted under body.
	if len(rec.Body().Children) != 0 {
		t.Error("detached create attached to body")
	}
}

func TestPatchNilNewDestroys(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)

	tree := El("div", nil, Text("bye"))
	pt.MountAt(rec.Body(), tree)
	rec.ResetCounts()

	if got := pt.Patch(tree, nil); got != nil {
		t.Errorf("Patch(old, nil) = %v, want nil", got)
	}
	if rec.Render() != "" {
		t.Errorf("subtree not removed: %s", rec.Render())
	}
}

func TestHooksSeeEveryOp(t *testing.T) {
	rec := NewRecorder()
	ops := map[string]int{}
	pt := New(rec, WithHooks(opCounterHooks{ops}))

	tree := El("div", Attrs{"id": "x"}, Text("t"))
	pt.MountAt(rec.Body(), tree)

	if ops[OpCreate] != 1 || ops[OpCreateText] != 1 || ops[OpSetAttr] != 1 {
		t.Errorf("hook counts = %v", ops)
	}
	if ops[OpInsert] == 0 {
		t.Errorf("insert ops not reported: %v", ops)
	}
}

type opCounterHooks struct{ ops map[string]int }

func (h opCounterHooks) OpApplied(op string) { h.ops[op]++ }
