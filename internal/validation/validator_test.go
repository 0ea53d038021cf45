package validation

import (
	"testing"

	domainerrors "github.com/royaltydesk/royaltydesk-server/internal/errors"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Currency string `json:"currency" validate:"required,iso4217"`
	Limit    int    `json:"limit" validate:"gte=1,lte=100"`
}

func TestValidateSuccess(t *testing.T) {
	v := New()
	err := v.Validate(sampleRequest{Email: "author@example.com", Currency: "USD", Limit: 10})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateFieldErrors(t *testing.T) {
	v := New()
	err := v.Validate(sampleRequest{Email: "not-an-email", Currency: "dollars", Limit: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var domainErr *domainerrors.Error
	if !domainerrors.As(err, &domainErr) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if domainErr.Code != domainerrors.CodeValidation {
		t.Errorf("Code: got %q, want %q", domainErr.Code, domainerrors.CodeValidation)
	}

	fields, ok := domainErr.Details.(map[string]string)
	if !ok {
		t.Fatalf("Details: expected map[string]string, got %T", domainErr.Details)
	}
	// Field errors are keyed by JSON tag name.
	for _, field := range []string{"email", "currency", "limit"} {
		if _, present := fields[field]; !present {
			t.Errorf("missing field error for %q: %v", field, fields)
		}
	}
}
