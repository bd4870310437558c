package io

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/httputil"
	"github.com/matzehuels/dendro/pkg/matrix"
)

const sampleCSV = `label,A,B,C
A,0,1,2
B,1,0,6
C,2,6,0
`

func TestReadCSV(t *testing.T) {
	d, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}
	if !slices.Equal(d.Labels, []string{"A", "B", "C"}) {
		t.Errorf("Labels = %v", d.Labels)
	}
	if len(d.Matrix) != 3 || d.Matrix[1][2] != 6 {
		t.Errorf("Matrix = %v", d.Matrix)
	}
}

func TestReadCSV_CommentsAndSpaces(t *testing.T) {
	in := "# cocktail flavours\nname, Mojito, Negroni\n\nMojito, 1, 0.2\n# between rows\nNegroni, 0.2, 1\n"
	d, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}
	if !slices.Equal(d.Labels, []string{"Mojito", "Negroni"}) || d.Matrix[0][1] != 0.2 {
		t.Errorf("got %+v", d)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"corner only", "label\n"},
		{"short row", "x,A,B\nA,0\nB,1,0\n"},
		{"long row", "x,A\nA,0,1\n"},
		{"not a number", "x,A,B\nA,0,one\nB,1,0\n"},
		{"bad quote", "x,\"A\nA,0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.in)); !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("ReadCSV() error = %v, want PARSE_ERROR", err)
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	d, err := ReadJSON(strings.NewReader(`{"labels":["A","B"],"matrix":[[0,1],[1,0]]}`))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if !slices.Equal(d.Labels, []string{"A", "B"}) || d.Matrix[0][1] != 1 {
		t.Errorf("got %+v", d)
	}

	for _, in := range []string{
		`{"labels":["A"]}`,
		`{"matrix":[[0]]}`,
		`{"labels":["A"],"matrix":[[0]],"order":[0]}`,
		`[1, 2]`,
	} {
		if _, err := ReadJSON(strings.NewReader(in)); !errors.Is(err, errors.ErrCodeParse) {
			t.Errorf("ReadJSON(%s) error = %v, want PARSE_ERROR", in, err)
		}
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{`{"labels":[]}`, FormatJSON},
		{"\n  {", FormatJSON},
		{"\ufeff{", FormatJSON},
		{"label,A\n", FormatCSV},
		{"", FormatCSV},
	}
	for _, tt := range tests {
		if got := Sniff([]byte(tt.in)); got != tt.want {
			t.Errorf("Sniff(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRead_UnknownFormat(t *testing.T) {
	if _, err := Read([]byte(sampleCSV), "xlsx"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Read() error = %v, want INVALID_FORMAT", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	want := matrix.Dataset{
		Labels: []string{"Ajax", "PSV, Eindhoven", "Feyenoord"},
		Matrix: [][]float64{{1, 0.042, 0.031}, {0.042, 1, 0.038}, {0.031, 0.038, 1}},
	}
	dir := t.TempDir()
	for _, name := range []string{"m.csv", "m.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := ExportFile(want, path); err != nil {
				t.Fatalf("ExportFile() error: %v", err)
			}
			got, err := ImportFile(path)
			if err != nil {
				t.Fatalf("ImportFile() error: %v", err)
			}
			if !slices.Equal(got.Labels, want.Labels) {
				t.Errorf("Labels = %v, want %v", got.Labels, want.Labels)
			}
			for i := range want.Matrix {
				if !slices.Equal(got.Matrix[i], want.Matrix[i]) {
					t.Errorf("row %d = %v, want %v", i, got.Matrix[i], want.Matrix[i])
				}
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	d := matrix.Dataset{Labels: []string{"A", "B"}, Matrix: [][]float64{{0, 1.5}, {1.5, 0}}}
	if err := WriteCSV(d, &buf); err != nil {
		t.Fatal(err)
	}
	want := "label,A,B\nA,0,1.5\nB,1.5,0\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), want)
	}
}

func TestExportFile_UnknownExtension(t *testing.T) {
	err := ExportFile(matrix.Dataset{}, filepath.Join(t.TempDir(), "m.xlsx"))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ExportFile() error = %v, want INVALID_FORMAT", err)
	}
}

func TestImportFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ImportFile(filepath.Join(dir, "missing.csv")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportFile(missing) error = %v, want FILE_NOT_FOUND", err)
	}

	path := filepath.Join(dir, "bad.json")
	os.WriteFile(path, []byte("{"), 0o644)
	if _, err := ImportFile(path); !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("ImportFile(bad) error = %v, want PARSE_ERROR", err)
	}
}

func TestLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/m.csv":
			w.Write([]byte(sampleCSV))
		case "/m":
			w.Write([]byte(`{"labels":["A"],"matrix":[[0]]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := httputil.NewFetcher(nil)
	f.Delay = time.Millisecond
	l := Loader{Fetcher: f}
	ctx := context.Background()

	d, err := l.Load(ctx, srv.URL+"/m.csv")
	if err != nil || len(d.Labels) != 3 {
		t.Errorf("Load(csv url) = %+v, %v", d, err)
	}
	d, err = l.Load(ctx, srv.URL+"/m")
	if err != nil || !slices.Equal(d.Labels, []string{"A"}) {
		t.Errorf("Load(sniffed url) = %+v, %v", d, err)
	}
	if _, err := l.Load(ctx, srv.URL+"/gone.csv"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(404) error = %v, want NOT_FOUND", err)
	}

	path := filepath.Join(t.TempDir(), "local.csv")
	os.WriteFile(path, []byte(sampleCSV), 0o644)
	if d, err := l.Load(ctx, path); err != nil || len(d.Matrix) != 3 {
		t.Errorf("Load(file) = %+v, %v", d, err)
	}

	if _, err := (Loader{}).Load(ctx, srv.URL+"/m.csv"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Load() without fetcher error = %v, want UNSUPPORTED", err)
	}
	if _, err := l.Load(ctx, ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load(\"\") error = %v, want INVALID_INPUT", err)
	}
}
