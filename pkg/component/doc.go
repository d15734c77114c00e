// Package component connects the reactive graph to the tree reconciler. An
// Instance owns a rendering watcher whose tracked getter renders a tree
// description and patches it against the platform in one pass, so every
// tracked read during rendering subscribes the instance to exactly the
// state it displayed. A FuncDef wraps a setup function into a reusable
// component definition whose instances receive their inputs as an observed
// object; parent re-renders write new inputs in, and the child's own
// watcher re-runs in the same flush.
package component
