package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		problem   string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", problem: "about:blank#validation-error", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", problem: "about:blank#not-found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", problem: "about:blank#conflict", detailsOK: true},
		{code: CodeBusinessRule, status: http.StatusConflict, publicMsg: "business rule violated", problem: "about:blank#business-rule", detailsOK: true},
		{code: CodeOptimisticLock, status: http.StatusConflict, publicMsg: "resource was modified concurrently", problem: "about:blank#optimistic-lock", retryable: true, detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", problem: "about:blank#internal", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", problem: "about:blank#dependency", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.ProblemType != tt.problem {
			t.Fatalf("code %s expected problem type %q got %q", tt.code, tt.problem, meta.ProblemType)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestNotFoundNamesResource(t *testing.T) {
	err := NotFound("beer order", 42)
	if err.Code() != CodeNotFound {
		t.Fatalf("expected not found code, got %s", err.Code())
	}
	if err.Message() != "beer order 42 not found" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeOptimisticLock, "stale"))
	if got := As(err); got == nil || got.Code() != CodeOptimisticLock {
		t.Fatalf("As failed to return typed error")
	}
	if !IsCode(err, CodeOptimisticLock) {
		t.Fatalf("IsCode should match wrapped code")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatalf("IsCode should not match other codes")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}
