package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	CodeTrackingError: {
		Category:   CategoryTracking,
		Message:    "getter threw during dependency tracking",
		Detail:     "The tracked function panicked while its dependencies were being collected. The run was aborted; the watcher stays subscribed to whatever it read before the throw.",
		Suggestion: "Handle the error inside the getter, or install a handler with reactive.SetErrorHandler to observe these failures.",
	},
	CodeSchedulerCycle: {
		Category:   CategoryScheduler,
		Message:    "watcher update cycle detected",
		Detail:     "A watcher re-enqueued itself more than the per-flush ceiling allows, which usually means its callback writes state the watcher itself reads.",
		Suggestion: "Break the cycle: avoid writing to a tracked property from the watcher that depends on it.",
	},
	CodeMalformedTree: {
		Category:   CategoryReconcile,
		Message:    "render produced a malformed tree description",
		Detail:     "A rendering watcher returned nil or something that is not a single tree description. The previously rendered tree is retained.",
		Suggestion: "Return exactly one root node from the render function.",
	},
	CodeDuplicateKeys: {
		Category:   CategoryReconcile,
		Message:    "duplicate keys among sibling nodes",
		Detail:     "Two sibling tree descriptions carry the same key. The reconciler may reuse the wrong node, corrupting platform state.",
		Suggestion: "Make keys unique among siblings, or drop keys entirely for this list.",
	},
	CodeBadWatchPath: {
		Category:   CategoryWatch,
		Message:    "unsupported watch path expression",
		Detail:     "Watch paths must be dotted identifier paths such as \"user.profile.name\".",
		Suggestion: "Use a getter function for anything more complex than a dotted path.",
	},
}

// Registered reports whether a code exists in the registry.
func Registered(code string) bool {
	_, ok := registry[code]
	return ok
}
