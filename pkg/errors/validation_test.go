package errors

import (
	"strings"
	"testing"
)

func TestValidateSource(t *testing.T) {
	valid := []string{
		"data/clubs.csv",
		"/tmp/matrix.json",
		"https://example.org/cocktails.csv",
		"http://localhost:8080/m.csv",
	}
	for _, s := range valid {
		if err := ValidateSource(s); err != nil {
			t.Errorf("ValidateSource(%q) error: %v", s, err)
		}
	}

	invalid := map[string]string{
		"empty":    "",
		"ftp":      "ftp://example.org/m.csv",
		"control":  "data/\x01m.csv",
		"newline":  "data/m.csv\n",
		"too long": strings.Repeat("m", maxSourceLen+1),
	}
	for name, s := range invalid {
		t.Run(name, func(t *testing.T) {
			if err := ValidateSource(s); !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateSource() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestIsRemoteSource(t *testing.T) {
	for s, want := range map[string]bool{
		"https://example.org/m.csv": true,
		"http://example.org/m.csv":  true,
		"data/m.csv":                false,
		"ftp://example.org/m.csv":   false,
	} {
		if got := IsRemoteSource(s); got != want {
			t.Errorf("IsRemoteSource(%q) = %v", s, got)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{"clubs.csv", true},
		{"data/week-10/clubs.csv", true},
		{"data/../clubs.csv", true},
		{"..data/clubs.csv", true},

		{"", false},
		{"/etc/passwd", false},
		{"../clubs.csv", false},
		{"data/../../clubs.csv", false},
		{"..", false},
		{`data\clubs.csv`, false},
		{"clubs\x00.csv", false},
		{strings.Repeat("d/", maxPathLen), false},
	}
	for _, tt := range tests {
		err := ValidatePath(tt.path)
		if tt.ok && err != nil {
			t.Errorf("ValidatePath(%q) error: %v", tt.path, err)
		}
		if !tt.ok && !Is(err, ErrCodeInvalidPath) {
			t.Errorf("ValidatePath(%q) error = %v, want INVALID_PATH", tt.path, err)
		}
	}
}
