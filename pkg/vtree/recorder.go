package vtree

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// RNode is a node in a Recorder's materialized tree.
type RNode struct {
	Kind     Kind
	Tag      string
	Text     string
	Attrs    map[string]any
	Parent   *RNode
	Children []*RNode
}

// OpCounts is a snapshot of the platform calls a Recorder has served.
type OpCounts struct {
	Creates     int
	TextCreates int
	AttrSets    int
	AttrRemoves int
	Inserts     int
	Removes     int
	TextWrites  int
}

// Total sums all counted operations.
func (c OpCounts) Total() int {
	return c.Creates + c.TextCreates + c.AttrSets + c.AttrRemoves +
		c.Inserts + c.Removes + c.TextWrites
}

// Recorder is an in-memory Platform. It materializes descriptions into an
// RNode tree and counts every call, which makes minimality of a patch
// directly assertable.
type Recorder struct {
	mu     sync.Mutex
	body   *RNode
	counts OpCounts
}

// NewRecorder creates a Recorder with an empty body container.
func NewRecorder() *Recorder {
	return &Recorder{
		body: &RNode{Kind: KindElement, Tag: "body"},
	}
}

// Body returns the root container node.
func (r *Recorder) Body() *RNode {
	return r.body
}

// Counts returns a snapshot of the operation counters.
func (r *Recorder) Counts() OpCounts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts
}

// ResetCounts zeroes the operation counters, leaving the tree intact.
// Tests call it after mounting so assertions only see the patch under test.
func (r *Recorder) ResetCounts() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = OpCounts{}
}

// CreateNode implements Platform.
func (r *Recorder) CreateNode(vn *VNode) Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts.Creates++
	return &RNode{Kind: vn.Kind, Tag: vn.Tag, Text: vn.Text}
}

// CreateText implements Platform.
func (r *Recorder) CreateText(text string) Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts.TextCreates++
	return &RNode{Kind: KindText, Text: text}
}

// SetAttr implements Platform.
func (r *Recorder) SetAttr(n Node, key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts.AttrSets++
	rn := n.(*RNode)
	if rn.Attrs == nil {
		rn.Attrs = make(map[string]any)
	}
	rn.Attrs[key] = value
}

// RemoveAttr implements Platform.
func (r *Recorder) RemoveAttr(n Node, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts.AttrRemoves++
	delete(n.(*RNode).Attrs, key)
}

// Insert implements Platform. Inserting a node that is already attached
// moves it, the way a real retained-mode target behaves.
func (r *Recorder) Insert(parent, n, before Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts.Inserts++
	p := parent.(*RNode)
	rn := n.(*RNode)
	if rn.Parent != nil {
		detach(rn)
	}
	idx := len(p.Children)
	if before != nil {
		if i := childIndex(p, before.(*RNode)); i >= 0 {
			idx = i
		}
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[idx+1:], p.Children[idx:])
	p.Children[idx] = rn
	rn.Parent = p
}

// Remove implements Platform.
func (r *Recorder) Remove(n Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts.Removes++
	detach(n.(*RNode))
}

// SetText implements Platform.
func (r *Recorder) SetText(n Node, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts.TextWrites++
	n.(*RNode).Text = text
}

// Parent implements Platform.
func (r *Recorder) Parent(n Node) Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := n.(*RNode).Parent; p != nil {
		return p
	}
	return nil
}

// NextSibling implements Platform.
func (r *Recorder) NextSibling(n Node) Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	rn := n.(*RNode)
	if rn.Parent == nil {
		return nil
	}
	i := childIndex(rn.Parent, rn)
	if i < 0 || i+1 >= len(rn.Parent.Children) {
		return nil
	}
	return rn.Parent.Children[i+1]
}

func detach(rn *RNode) {
	p := rn.Parent
	if p == nil {
		return
	}
	if i := childIndex(p, rn); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	rn.Parent = nil
}

func childIndex(p, rn *RNode) int {
	for i, c := range p.Children {
		if c == rn {
			return i
		}
	}
	return -1
}

// Render serializes the body's contents as markup, attributes in sorted
// order. Intended for test assertions and inspector snapshots.
func (r *Recorder) Render() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b strings.Builder
	for _, c := range r.body.Children {
		renderNode(&b, c)
	}
	return b.String()
}

func renderNode(b *strings.Builder, rn *RNode) {
	switch rn.Kind {
	case KindText:
		b.WriteString(rn.Text)
	case KindComment:
		fmt.Fprintf(b, "<!--%s-->", rn.Text)
	case KindEmpty:
		b.WriteString("<!---->")
	default:
		b.WriteByte('<')
		b.WriteString(rn.Tag)
		keys := make([]string, 0, len(rn.Attrs))
		for k := range rn.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, " %s=%q", k, fmt.Sprint(rn.Attrs[k]))
		}
		b.WriteByte('>')
		for _, c := range rn.Children {
			renderNode(b, c)
		}
		fmt.Fprintf(b, "</%s>", rn.Tag)
	}
}
