package vtree

// El builds an element description. Attrs may be nil.
func El(tag string, attrs Attrs, children ...*VNode) *VNode {
	return &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Attrs:    attrs,
		Children: children,
	}
}

// Text builds a text node description.
func Text(text string) *VNode {
	return &VNode{Kind: KindText, Text: text}
}

// Comment builds a comment node description.
func Comment(text string) *VNode {
	return &VNode{Kind: KindComment, Text: text}
}

// Empty builds an empty placeholder. Conditional branches render one so the
// node keeps a stable position among its siblings.
func Empty() *VNode {
	return &VNode{Kind: KindEmpty}
}

// Comp builds a component node description. Attrs become the instance's
// inputs; children are passed through for the component to place.
func Comp(def ComponentDef, attrs Attrs, children ...*VNode) *VNode {
	return &VNode{
		Kind:     KindComponent,
		Def:      def,
		Attrs:    attrs,
		Children: children,
	}
}
