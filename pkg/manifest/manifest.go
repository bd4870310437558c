// Package manifest reads deck manifests: YAML files listing the widgets
// `dendro batch` renders in one run.
//
//	title: Week 10
//	defaults:
//	  linkage: average
//	  formats: [svg, png]
//	widgets:
//	  - name: clubs
//	    source: data/clubs.csv
//	    noun: clubs
//	  - name: cocktails
//	    source: https://example.org/cocktails.json
//	    linkage: complete
//	    similarity: true
//	    scheme: purples
//
// Relative sources are resolved against the manifest's directory. A widget
// may embed its matrix under "data" instead of naming a source.
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/matrix"
	"github.com/matzehuels/dendro/pkg/pipeline"
)

// Widget is one deck entry. Zero fields inherit from the deck defaults.
type Widget struct {
	Name   string          `yaml:"name"`
	Source string          `yaml:"source,omitempty"`
	Data   *matrix.Dataset `yaml:"data,omitempty"`

	Linkage     string   `yaml:"linkage,omitempty"`
	Similarity  bool     `yaml:"similarity,omitempty"`
	Title       string   `yaml:"title,omitempty"`
	Noun        string   `yaml:"noun,omitempty"`
	Unit        string   `yaml:"unit,omitempty"`
	Orientation string   `yaml:"orientation,omitempty"`
	Width       float64  `yaml:"width,omitempty"`
	Height      float64  `yaml:"height,omitempty"`
	Scheme      string   `yaml:"scheme,omitempty"`
	ScaleMax    float64  `yaml:"scale_max,omitempty"`
	Legend      bool     `yaml:"legend,omitempty"`
	Interactive bool     `yaml:"interactive,omitempty"`
	Formats     []string `yaml:"formats,omitempty"`
}

// Deck is a parsed manifest.
type Deck struct {
	Title    string   `yaml:"title,omitempty"`
	Defaults Widget   `yaml:"defaults,omitempty"`
	Widgets  []Widget `yaml:"widgets"`

	// dir is the directory relative sources are resolved against.
	dir string
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Read decodes a deck. Unknown keys are rejected. Relative sources are
// resolved against dir.
func Read(r io.Reader, dir string) (*Deck, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var d Deck
	if err := dec.Decode(&d); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeParse, "manifest is empty")
		}
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode manifest")
	}
	d.dir = dir
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadFile reads the manifest at path.
func ReadFile(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	d, err := Read(bytes.NewReader(data), filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Validate checks that every widget has a unique file-safe name and exactly
// one matrix. Relative sources must stay inside the manifest directory.
func (d *Deck) Validate() error {
	if len(d.Widgets) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "manifest lists no widgets")
	}
	seen := make(map[string]bool, len(d.Widgets))
	for i, w := range d.Widgets {
		if !namePattern.MatchString(w.Name) {
			return errors.New(errors.ErrCodeInvalidInput, "widget %d: invalid name %q", i+1, w.Name)
		}
		if seen[w.Name] {
			return errors.New(errors.ErrCodeInvalidInput, "widget %q listed twice", w.Name)
		}
		seen[w.Name] = true
		if (w.Source == "") == (w.Data == nil) {
			return errors.New(errors.ErrCodeInvalidInput, "widget %q needs exactly one of source and data", w.Name)
		}
		if w.Source != "" && !errors.IsRemoteSource(w.Source) && !filepath.IsAbs(w.Source) {
			if err := errors.ValidatePath(w.Source); err != nil {
				return fmt.Errorf("widget %q: %w", w.Name, err)
			}
		}
	}
	return nil
}

// Options returns the pipeline options of widget i, defaults applied.
func (d *Deck) Options(i int) pipeline.Options {
	w := d.Widgets[i].merge(d.Defaults)
	source := w.Source
	if d.local(source) {
		source = filepath.Join(d.dir, source)
	}
	return pipeline.Options{
		Source:      source,
		Dataset:     w.Data,
		Linkage:     w.Linkage,
		Similarity:  w.Similarity,
		Width:       w.Width,
		Height:      w.Height,
		Orientation: w.Orientation,
		Noun:        w.Noun,
		Unit:        w.Unit,
		Formats:     w.Formats,
		Scheme:      w.Scheme,
		ScaleMax:    w.ScaleMax,
		Title:       w.Title,
		Legend:      w.Legend,
		Interactive: w.Interactive,
	}
}

// local reports whether source is a path relative to the manifest.
func (d *Deck) local(source string) bool {
	return d.dir != "" && source != "" && !errors.IsRemoteSource(source) && !filepath.IsAbs(source)
}

// merge fills the zero fields of w from def.
func (w Widget) merge(def Widget) Widget {
	str := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	num := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	str(&w.Linkage, def.Linkage)
	str(&w.Title, def.Title)
	str(&w.Noun, def.Noun)
	str(&w.Unit, def.Unit)
	str(&w.Orientation, def.Orientation)
	str(&w.Scheme, def.Scheme)
	num(&w.Width, def.Width)
	num(&w.Height, def.Height)
	num(&w.ScaleMax, def.ScaleMax)
	w.Similarity = w.Similarity || def.Similarity
	w.Legend = w.Legend || def.Legend
	w.Interactive = w.Interactive || def.Interactive
	if len(w.Formats) == 0 {
		w.Formats = def.Formats
	}
	return w
}
