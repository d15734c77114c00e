// Package errors provides structured diagnostics for the reactive runtime.
//
// Every diagnostic has a stable code (E001, E002, ...) registered with a
// category, a message and a fix suggestion, so callers can match on codes
// while logs stay self-explanatory.
package errors
