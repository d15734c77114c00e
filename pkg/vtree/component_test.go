package vtree

import "testing"

// fakeDef mounts instances that materialize a single element and record the
// delegation calls the reconciler makes.
type fakeDef struct {
	name      string
	mounts    int
	instances []*fakeInstance
}

type fakeInstance struct {
	def      *fakeDef
	root     Node
	received []*VNode
	unmounts int
	p        Platform
}

func (d *fakeDef) Name() string { return d.name }

func (d *fakeDef) Mount(vn *VNode, p Platform) Instance {
	d.mounts++
	inst := &fakeInstance{def: d, p: p}
	inst.root = p.CreateNode(El(d.name, nil))
	d.instances = append(d.instances, inst)
	return inst
}

func (i *fakeInstance) Receive(next *VNode) { i.received = append(i.received, next) }
func (i *fakeInstance) Root() Node          { return i.root }
func (i *fakeInstance) Unmount() {
	i.unmounts++
	i.p.Remove(i.root)
}

func TestComponentMountOnce(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)
	def := &fakeDef{name: "widget"}

	tree := El("div", nil, Comp(def, Attrs{"label": "a"}))
	pt.MountAt(rec.Body(), tree)

	if def.mounts != 1 {
		t.Fatalf("mounts = %d, want 1", def.mounts)
	}
	if tree.Children[0].Ref != def.instances[0].root {
		t.Error("component node Ref is not the instance root")
	}
}

func TestComponentPatchDelegatesToReceive(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)
	def := &fakeDef{name: "widget"}

	old := El("div", nil, Comp(def, Attrs{"label": "a"}))
	pt.MountAt(rec.Body(), old)

	next := El("div", nil, Comp(def, Attrs{"label": "b"}))
	pt.Patch(old, next)

	if def.mounts != 1 {
		t.Errorf("same def remounted, mounts = %d", def.mounts)
	}
	inst := def.instances[0]
	if len(inst.received) != 1 {
		t.Fatalf("Receive calls = %d, want 1", len(inst.received))
	}
	if inst.received[0].Attrs["label"] != "b" {
		t.Errorf("Receive got attrs %v", inst.received[0].Attrs)
	}
	if next.Children[0].Inst != Instance(inst) {
		t.Error("instance not carried to the new description")
	}
}

func TestDifferentDefReplacesComponent(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)
	defA := &fakeDef{name: "a"}
	defB := &fakeDef{name: "b"}

	old := El("div", nil, Comp(defA, nil))
	pt.MountAt(rec.Body(), old)

	pt.Patch(old, El("div", nil, Comp(defB, nil)))

	if defA.instances[0].unmounts != 1 {
		t.Errorf("old instance not unmounted")
	}
	if defB.mounts != 1 {
		t.Errorf("new def not mounted, mounts = %d", defB.mounts)
	}
}

func TestNestedComponentUnmountedWithSubtree(t *testing.T) {
	rec := NewRecorder()
	pt := New(rec)
	def := &fakeDef{name: "widget"}

	old := El("div", nil,
		El("section", nil, Comp(def, nil)),
	)
	pt.MountAt(rec.Body(), old)

	// Dropping the section must unmount the component nested inside it.
	pt.Patch(old, El("div", nil))

	if def.instances[0].unmounts != 1 {
		t.Errorf("nested component not unmounted, unmounts = %d", def.instances[0].unmounts)
	}
}
