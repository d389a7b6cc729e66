package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestRequiredText(t *testing.T) {
	got, err := RequiredText("name", "  Pancakes ", 255)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "Pancakes" {
		t.Fatalf("expected trimmed value, got %q", got)
	}

	_, err = RequiredText("name", "   ", 255)
	var verr *Error
	if !errors.As(err, &verr) || verr.Field != "name" {
		t.Fatalf("expected name validation error, got %v", err)
	}

	_, err = RequiredText("name", strings.Repeat("é", 256), 255)
	if !errors.As(err, &verr) || verr.Message != "name is too long" {
		t.Fatalf("expected too long error, got %v", err)
	}

	if _, err := RequiredText("name", strings.Repeat("é", 255), 255); err != nil {
		t.Fatalf("expected 255 runes to pass, got %v", err)
	}
}
