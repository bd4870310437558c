package io

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/httputil"
	"github.com/matzehuels/dendro/pkg/matrix"
)

// Loader resolves a matrix source, either a local path or an http(s) URL.
type Loader struct {
	// Fetcher downloads remote sources. Nil disables them.
	Fetcher *httputil.Fetcher
}

// Load reads the dataset named by source.
func (l Loader) Load(ctx context.Context, source string) (matrix.Dataset, error) {
	data, format, err := l.Bytes(ctx, source)
	if err != nil {
		return matrix.Dataset{}, err
	}
	d, err := Read(data, format)
	if err != nil {
		return matrix.Dataset{}, fmt.Errorf("%s: %w", source, err)
	}
	return d, nil
}

// Bytes returns the raw content of source and the format implied by its name
// ("" when the name does not tell).
func (l Loader) Bytes(ctx context.Context, source string) ([]byte, Format, error) {
	if err := errors.ValidateSource(source); err != nil {
		return nil, "", err
	}
	if !errors.IsRemoteSource(source) {
		data, err := readFile(source)
		return data, FormatFromPath(source), err
	}
	if l.Fetcher == nil {
		return nil, "", errors.New(errors.ErrCodeUnsupported, "remote sources are disabled")
	}
	data, err := l.Fetcher.Get(ctx, source)
	if err != nil {
		return nil, "", err
	}
	format := Format("")
	if u, err := url.Parse(source); err == nil {
		format = FormatFromPath(path.Base(u.Path))
	}
	return data, format, nil
}
