package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/observability"
)

// MaxBodySize bounds how much of a response body [Fetcher.Get] reads.
const MaxBodySize = 64 << 20

// Fetcher downloads matrix sources over HTTP. Responses are cached when
// Cache is set and transient failures are retried.
type Fetcher struct {
	Client   *http.Client
	Cache    *Cache
	Attempts int
	Delay    time.Duration
}

// NewFetcher returns a Fetcher with a 30 second client timeout, 3 attempts
// and a 1 second initial retry delay. cache may be nil.
func NewFetcher(cache *Cache) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Cache:    cache,
		Attempts: 3,
		Delay:    time.Second,
	}
}

// Get returns the body at url. A fresh cache entry is returned without a
// request. When every attempt fails and a stale entry exists, the stale body
// is returned instead of the error.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var stale []byte
	if f.Cache != nil {
		data, ok, err := f.Cache.Get(url)
		if ok {
			return data, nil
		}
		if err == ErrExpired {
			stale = data
		}
	}

	var body []byte
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		var err error
		body, err = f.do(ctx, url)
		return err
	})
	if err != nil {
		if stale != nil {
			return stale, nil
		}
		return nil, err
	}

	if f.Cache != nil {
		_ = f.Cache.Set(url, body)
	}
	return body, nil
}

func (f *Fetcher) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "text/csv, application/json;q=0.9, */*;q=0.1")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	hooks := observability.HTTP()
	host, p := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, p)
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, p, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Transient(errors.Wrap(errors.ErrCodeNetwork, err, "get %s", url))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, p, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "%s: not found", url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, Transient(errors.New(errors.ErrCodeNetwork, "%s: %s", url, resp.Status))
	case resp.StatusCode != http.StatusOK:
		return nil, errors.New(errors.ErrCodeNetwork, "%s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, Transient(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url))
	}
	if len(data) > MaxBodySize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: body exceeds %d bytes", url, MaxBodySize)
	}
	return data, nil
}
