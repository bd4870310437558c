package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/matrix"
)

// DefaultCorner is the header cell written above the row labels.
const DefaultCorner = "label"

// WriteCSV encodes d in the format read by [ReadCSV].
func WriteCSV(d matrix.Dataset, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{DefaultCorner}, d.Labels...)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	for i, row := range d.Matrix {
		rec := make([]string, 0, len(row)+1)
		label := ""
		if i < len(d.Labels) {
			label = d.Labels[i]
		}
		rec = append(rec, label)
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON encodes d in the format read by [ReadJSON].
func WriteJSON(d matrix.Dataset, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportFile writes d to path in the format implied by its extension.
func ExportFile(d matrix.Dataset, path string) error {
	format := FormatFromPath(path)
	if format == "" {
		return errors.New(errors.ErrCodeInvalidFormat, "cannot infer matrix format from %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if format == FormatCSV {
		return WriteCSV(d, f)
	}
	return WriteJSON(d, f)
}
