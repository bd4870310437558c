package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorText(t *testing.T) {
	err := New(ErrCodeInvalidLinkage, "unknown linkage %q", "ward")
	if got := err.Error(); got != `INVALID_LINKAGE: unknown linkage "ward"` {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("connection refused")
	wrapped := Wrap(ErrCodeNetwork, cause, "fetch %s", "https://example.org/m.csv")
	if got := wrapped.Error(); got != "NETWORK_ERROR: fetch https://example.org/m.csv: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(wrapped, cause) || errors.Unwrap(wrapped) != cause {
		t.Error("Wrap() lost its cause")
	}
}

func TestCodeThroughWrapping(t *testing.T) {
	base := New(ErrCodeFileNotFound, "open clubs.csv")
	err := fmt.Errorf("widget clubs: %w", base)

	if GetCode(err) != ErrCodeFileNotFound {
		t.Errorf("GetCode() = %q", GetCode(err))
	}
	if !Is(err, ErrCodeFileNotFound) || Is(err, ErrCodeNotFound) {
		t.Error("Is() does not match the wrapped code exactly")
	}
	if UserMessage(err) != "open clubs.csv" {
		t.Errorf("UserMessage() = %q", UserMessage(err))
	}

	plain := errors.New("boom")
	if GetCode(plain) != "" || Is(plain, "") || Is(nil, ErrCodeInternal) {
		t.Error("plain errors carry no code")
	}
	if UserMessage(plain) != "boom" || UserMessage(nil) != "" {
		t.Errorf("UserMessage(plain) = %q", UserMessage(plain))
	}
}

func TestOutermostCodeWins(t *testing.T) {
	inner := New(ErrCodeParse, "line 3")
	outer := Wrap(ErrCodeInvalidConfig, inner, "config.toml")
	if GetCode(outer) != ErrCodeInvalidConfig {
		t.Errorf("GetCode() = %q, want INVALID_CONFIG", GetCode(outer))
	}
}

func TestClasses(t *testing.T) {
	tests := []struct {
		code     Code
		invalid  bool
		notFound bool
	}{
		{ErrCodeInvalidInput, true, false},
		{ErrCodeInvalidMatrix, true, false},
		{ErrCodeInvalidLinkage, true, false},
		{ErrCodeInvalidFormat, true, false},
		{ErrCodeInvalidOrientation, true, false},
		{ErrCodeInvalidConfig, true, false},
		{ErrCodeInvalidPath, true, false},
		{ErrCodeParse, true, false},
		{ErrCodeNotFound, false, true},
		{ErrCodeFileNotFound, false, true},
		{ErrCodeWidgetNotFound, false, true},
		{ErrCodeNetwork, false, false},
		{ErrCodeTimeout, false, false},
		{ErrCodeInternal, false, false},
		{ErrCodeUnsupported, false, false},
	}
	for _, tt := range tests {
		err := fmt.Errorf("ctx: %w", New(tt.code, "x"))
		if IsInvalid(err) != tt.invalid || IsNotFound(err) != tt.notFound {
			t.Errorf("%s: IsInvalid = %v, IsNotFound = %v", tt.code, IsInvalid(err), IsNotFound(err))
		}
	}
}
