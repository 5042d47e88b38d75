package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	e := &Error{Code: "TEST", Message: "something failed"}
	if e.Error() != "[TEST] something failed" {
		t.Errorf("unexpected message: %s", e.Error())
	}

	wrapped := WrapError(e, fmt.Errorf("root cause"))
	if wrapped.Error() != "[TEST] something failed: root cause" {
		t.Errorf("unexpected wrapped message: %s", wrapped.Error())
	}
}

func TestError_Is(t *testing.T) {
	cause := fmt.Errorf("upstream empty")
	err := WrapError(ErrInsufficientData, cause)

	if !errors.Is(err, ErrInsufficientData) {
		t.Error("expected errors.Is to match by code")
	}
	if errors.Is(err, ErrNoData) {
		t.Error("should not match a different code")
	}
	if !errors.Is(err, cause) {
		t.Error("expected unwrap to reach the cause")
	}
}
