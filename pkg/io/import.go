package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/matrix"
)

// Format names an on-disk matrix encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// maxInputSize bounds how much of a matrix source is read into memory.
const maxInputSize = 64 << 20

// ReadCSV decodes a labelled matrix from r.
//
// The first record is the header: a corner cell followed by one label per
// column. Every following record starts with a row label followed by n
// numeric values:
//
//	club,Ajax,PSV,Feyenoord
//	Ajax,1,0.042,0.031
//	PSV,0.042,1,0.038
//	Feyenoord,0.031,0.038,1
//
// Labels come from the header; row labels are not checked against it.
// Blank lines and lines starting with # are skipped. ReadCSV does not
// close r.
func ReadCSV(r io.Reader) (matrix.Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return matrix.Dataset{}, errors.Wrap(errors.ErrCodeParse, err, "read csv")
	}
	if len(records) == 0 {
		return matrix.Dataset{}, errors.New(errors.ErrCodeParse, "csv is empty")
	}

	header := records[0]
	if len(header) < 2 {
		return matrix.Dataset{}, errors.New(errors.ErrCodeParse, "csv header needs a corner cell and at least one label")
	}
	labels := make([]string, len(header)-1)
	for i, h := range header[1:] {
		labels[i] = strings.TrimSpace(h)
	}
	n := len(labels)

	rows := make([][]float64, 0, n)
	for line, rec := range records[1:] {
		if len(rec) != n+1 {
			return matrix.Dataset{}, errors.New(errors.ErrCodeParse,
				"csv row %d has %d fields, want %d", line+2, len(rec), n+1)
		}
		row := make([]float64, n)
		for j, cell := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return matrix.Dataset{}, errors.Wrap(errors.ErrCodeParse, err,
					"csv row %d column %s", line+2, labels[j])
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return matrix.Dataset{Labels: labels, Matrix: rows}, nil
}

// ReadJSON decodes a labelled matrix from r. The input must be an object with
// "labels" and "matrix" keys:
//
//	{"labels": ["A", "B"], "matrix": [[0, 1], [1, 0]]}
//
// Unknown keys are rejected so that a result file is not mistaken for a
// matrix. ReadJSON does not close r.
func ReadJSON(r io.Reader) (matrix.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var d matrix.Dataset
	if err := dec.Decode(&d); err != nil {
		return matrix.Dataset{}, errors.Wrap(errors.ErrCodeParse, err, "decode json matrix")
	}
	if d.Labels == nil || d.Matrix == nil {
		return matrix.Dataset{}, errors.New(errors.ErrCodeParse, `json matrix needs "labels" and "matrix"`)
	}
	return d, nil
}

// Read decodes data in the given format. An empty format is detected from
// the content: a leading '{' selects JSON, anything else CSV.
func Read(data []byte, format Format) (matrix.Dataset, error) {
	if format == "" {
		format = Sniff(data)
	}
	switch format {
	case FormatCSV:
		return ReadCSV(bytes.NewReader(data))
	case FormatJSON:
		return ReadJSON(bytes.NewReader(data))
	}
	return matrix.Dataset{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported matrix format %q", format)
}

// Sniff guesses the format of data.
func Sniff(data []byte) Format {
	if trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff"); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatCSV
}

// FormatFromPath derives the format from a file extension. It returns ""
// when the extension is not recognised.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	}
	return ""
}

// ImportFile reads a matrix file. The format is taken from the extension,
// falling back to content sniffing.
func ImportFile(path string) (matrix.Dataset, error) {
	data, err := readFile(path)
	if err != nil {
		return matrix.Dataset{}, err
	}
	d, err := Read(data, FormatFromPath(path))
	if err != nil {
		return matrix.Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > maxInputSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s exceeds %d bytes", path, maxInputSize)
	}
	return data, nil
}
