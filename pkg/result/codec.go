package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/dendro/pkg/errors"
)

// =============================================================================
// Result Serialization API
// =============================================================================

// Marshal encodes r as indented JSON.
func Marshal(r Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes and validates JSON bytes.
func Unmarshal(data []byte) (Result, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes r as indented JSON to w.
func Write(r Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes r to a JSON file with 0644 permissions.
func WriteFile(r Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(r, f)
}

// Read decodes a Result from r and validates it.
func Read(r io.Reader) (Result, error) {
	var out Result
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeParse, err, "decode result")
	}
	if err := out.Validate(); err != nil {
		return Result{}, err
	}
	return out, nil
}

// ReadFile reads and validates a JSON result file.
func ReadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// IsResult reports whether data looks like a serialized Result rather than a
// matrix dataset. Only the top-level keys are inspected.
func IsResult(data []byte) bool {
	var probe struct {
		Tree  json.RawMessage `json:"tree"`
		Order json.RawMessage `json:"order"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return len(probe.Tree) > 0 && len(probe.Order) > 0
}
