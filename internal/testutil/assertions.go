package testutil

import (
	stderrors "errors"
	"testing"

	"moneta/internal/errors"
)

// AssertNoError fails the test immediately if err is non-nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAppError fails the test unless err is an AppError with the
// sentinel's code.
func AssertAppError(t *testing.T, err error, sentinel *errors.AppError) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", sentinel.Code)
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError %s, got %T: %v", sentinel.Code, err, err)
	}
	if appErr.Code != sentinel.Code {
		t.Fatalf("expected error code %s, got %s (%v)", sentinel.Code, appErr.Code, err)
	}
}
