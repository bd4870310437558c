package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] together with the stale body of an
// entry older than the TTL.
var ErrExpired = errors.New("cache entry expired")

// Cache keeps fetched bodies on disk. An entry lives in
// <dir>/<hh>/<sha256 of key> where hh is the first byte of the digest, and
// ages by modification time. Writes replace whole files, so processes may
// share a directory.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewCache opens the cache in dir, creating it. An empty dir selects
// dendro/http under the user cache directory. A zero ttl keeps entries
// forever.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "dendro", "http")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *Cache) Dir() string        { return c.dir }
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the body stored under key and whether it is fresh. A miss is
// (nil, false, nil); an expired entry returns its body with [ErrExpired].
func (c *Cache) Get(key string) ([]byte, bool, error) {
	f, err := os.Open(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false, err
	}
	body := make([]byte, info.Size())
	if _, err := io.ReadFull(f, body); err != nil {
		return nil, false, err
	}
	if c.ttl > 0 && c.now().Sub(info.ModTime()) > c.ttl {
		return body, false, ErrExpired
	}
	return body, true, nil
}

// Set stores body under key.
func (c *Cache) Set(key string, body []byte) error {
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".set-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(body)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *Cache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, name[:2], name)
}
