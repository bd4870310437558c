package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/dendro/pkg/errors"
)

const deck = `
title: Week 10
defaults:
  linkage: average
  noun: items
  formats: [svg, png]
widgets:
  - name: clubs
    source: data/clubs.csv
    noun: clubs
  - name: cocktails
    source: https://example.org/cocktails.json
    linkage: complete
    similarity: true
    scheme: purples
    formats: [json]
  - name: inline
    data:
      labels: [A, B]
      matrix: [[0, 1], [1, 0]]
`

func TestRead(t *testing.T) {
	d, err := Read(strings.NewReader(deck), "/decks")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if d.Title != "Week 10" || len(d.Widgets) != 3 {
		t.Fatalf("deck = %+v", d)
	}

	clubs := d.Options(0)
	if clubs.Source != filepath.Join("/decks", "data", "clubs.csv") {
		t.Errorf("clubs source = %q", clubs.Source)
	}
	if clubs.Linkage != "average" || clubs.Noun != "clubs" {
		t.Errorf("clubs options = %+v", clubs)
	}
	if !slices.Equal(clubs.Formats, []string{"svg", "png"}) {
		t.Errorf("clubs formats = %v", clubs.Formats)
	}

	cocktails := d.Options(1)
	if cocktails.Source != "https://example.org/cocktails.json" {
		t.Errorf("remote source rewritten: %q", cocktails.Source)
	}
	if cocktails.Linkage != "complete" || !cocktails.Similarity || cocktails.Scheme != "purples" {
		t.Errorf("cocktails options = %+v", cocktails)
	}
	if cocktails.Noun != "items" || !slices.Equal(cocktails.Formats, []string{"json"}) {
		t.Errorf("cocktails defaults = %q %v", cocktails.Noun, cocktails.Formats)
	}

	inline := d.Options(2)
	if inline.Dataset == nil || !slices.Equal(inline.Dataset.Labels, []string{"A", "B"}) {
		t.Errorf("inline dataset = %+v", inline.Dataset)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"empty", "", errors.ErrCodeParse},
		{"unknown key", "widgets:\n  - name: a\n    source: a.csv\n    colour: red\n", errors.ErrCodeParse},
		{"no widgets", "title: x\nwidgets: []\n", errors.ErrCodeInvalidInput},
		{"bad name", "widgets:\n  - name: ../a\n    source: a.csv\n", errors.ErrCodeInvalidInput},
		{"duplicate", "widgets:\n  - name: a\n    source: a.csv\n  - name: a\n    source: b.csv\n", errors.ErrCodeInvalidInput},
		{"no matrix", "widgets:\n  - name: a\n", errors.ErrCodeInvalidInput},
		{"escape", "widgets:\n  - name: a\n    source: ../a.csv\n", errors.ErrCodeInvalidPath},
		{"two matrices", "widgets:\n  - name: a\n    source: a.csv\n    data: {labels: [A], matrix: [[0]]}\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.body), "")
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.yaml")
	if err := os.WriteFile(path, []byte("widgets:\n  - name: a\n    source: a.csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if got := d.Options(0).Source; got != filepath.Join(dir, "a.csv") {
		t.Errorf("source = %q", got)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.yaml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile(missing) error = %v", err)
	}
}
