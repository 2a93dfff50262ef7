package testutil

import (
	"errors"
	"testing"
	"time"

	apperrors "finara/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertTimeEqual fails the test unless got and want are the same instant.
// A nil got is reported as a failure.
func AssertTimeEqual(t *testing.T, what string, got *time.Time, want time.Time) {
	t.Helper()

	if got == nil {
		t.Errorf("%s: expected %s, got nil", what, want.Format(time.RFC3339))
		return
	}
	if !got.Equal(want) {
		t.Errorf("%s: expected %s, got %s", what, want.Format(time.RFC3339), got.UTC().Format(time.RFC3339))
	}
}
