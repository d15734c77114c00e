package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestAllCodesRegistered(t *testing.T) {
	for _, code := range []string{
		CodeTrackingError,
		CodeSchedulerCycle,
		CodeMalformedTree,
		CodeDuplicateKeys,
		CodeBadWatchPath,
	} {
		if !Registered(code) {
			t.Errorf("code %s not registered", code)
		}
		e := New(code)
		if e.Code != code {
			t.Errorf("New(%s).Code = %s", code, e.Code)
		}
		if e.Message == "" || e.Suggestion == "" {
			t.Errorf("New(%s) missing message or suggestion", code)
		}
	}
}

func TestErrorStringIncludesCode(t *testing.T) {
	e := New(CodeSchedulerCycle)
	if !strings.HasPrefix(e.Error(), "E002: ") {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	inner := stderrors.New("boom")
	e := New(CodeTrackingError).Wrap(inner)

	if !stderrors.Is(e, inner) {
		t.Error("errors.Is does not see the wrapped error")
	}
	if !strings.Contains(e.Error(), "boom") {
		t.Errorf("Error() = %q, wrapped message missing", e.Error())
	}

	var se *Error
	if !stderrors.As(e, &se) || se.Code != CodeTrackingError {
		t.Error("errors.As failed to recover *Error")
	}
}

func TestUnknownCode(t *testing.T) {
	e := New("E999")
	if e.Code != "E999" || e.Message != "Unknown error" {
		t.Errorf("New(E999) = %+v", e)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeTrackingError) != nil {
		t.Error("FromError(nil) should be nil")
	}

	inner := stderrors.New("raw")
	e := FromError(inner, CodeMalformedTree)
	if e.Code != CodeMalformedTree || !stderrors.Is(e, inner) {
		t.Errorf("FromError = %+v", e)
	}

	// An *Error passes through untouched.
	orig := New(CodeDuplicateKeys)
	if FromError(orig, CodeTrackingError) != orig {
		t.Error("FromError rewrapped an existing *Error")
	}
}

func TestNewf(t *testing.T) {
	e := Newf(CategoryReconcile, "bad node at index %d", 3)
	if e.Category != CategoryReconcile {
		t.Errorf("Category = %s", e.Category)
	}
	if e.Error() != "bad node at index 3" {
		t.Errorf("Error() = %q", e.Error())
	}
}
