package vtree

// Node is an opaque handle to a platform-materialized node. The reconciler
// only ever passes handles back to the Platform that produced them.
type Node any

// Platform is the fixed capability set the reconciler drives. It is the
// only way the reconciler touches the target environment; no implementation
// detail of the environment leaks past it.
type Platform interface {
	// CreateNode materializes a non-text description (element, comment or
	// empty placeholder) without attributes or children.
	CreateNode(vn *VNode) Node

	// CreateText materializes a text node.
	CreateText(text string) Node

	// SetAttr sets or updates an attribute.
	SetAttr(n Node, key string, value any)

	// RemoveAttr removes an attribute.
	RemoveAttr(n Node, key string)

	// Insert places n under parent, immediately before the reference node.
	// A nil reference appends. Inserting an attached node moves it.
	Insert(parent, n, before Node)

	// Remove detaches n from its parent.
	Remove(n Node)

	// SetText replaces the content of a text or comment node.
	SetText(n Node, text string)

	// Parent returns the parent of n, or nil at the root.
	Parent(n Node) Node

	// NextSibling returns the node after n under the same parent, or nil.
	NextSibling(n Node) Node
}
