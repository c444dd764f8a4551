// Package offline keeps a copy of the calculator's static assets so the page
// keeps working when the network does not.
package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/bmi/pkg/i18n"
	"github.com/charlie0129/bmi/pkg/storage"
)

const (
	// DefaultName is the generation installed when none is configured.
	DefaultName = "bmi-calculator-v1"
	// OfflineDocument is served for any uncached page when offline.
	OfflineDocument = "/index.html"

	keyPrefix = "offline:"
)

// DefaultManifest lists the assets installed into a fresh generation.
func DefaultManifest() []string {
	m := []string{
		"/",
		"/index.html",
		"/manifest.json",
		"/css/style.css",
		"/js/app.js",
		"/js/i18n.js",
	}
	for _, code := range i18n.SupportedLanguages {
		m = append(m, "/js/locales/"+code+".json")
	}
	return append(m, "/icon-192.svg", "/icon-512.svg")
}

// Entry is one stored response.
type Entry struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header,omitempty"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"storedAt"`
}

// Response rebuilds an HTTP response from the entry.
func (e *Entry) Response(req *http.Request) *http.Response {
	h := e.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("X-Offline-Cache", "hit")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// Cache is one named generation of stored responses.
type Cache struct {
	kv   storage.Store
	name string
	now  func() time.Time
}

func New(kv storage.Store, name string) *Cache {
	if name == "" {
		name = DefaultName
	}
	return &Cache{kv: kv, name: name, now: time.Now}
}

func (c *Cache) Name() string {
	return c.name
}

func (c *Cache) prefix() string {
	return keyPrefix + c.name + ":"
}

func (c *Cache) key(path string) string {
	if path == "" {
		path = "/"
	}
	return c.prefix() + path
}

// Put stores e under path, replacing whatever was there.
func (c *Cache) Put(ctx context.Context, path string, e Entry) error {
	if e.StoredAt.IsZero() {
		e.StoredAt = c.now()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode cache entry %s", path)
	}
	if err := c.kv.Set(ctx, c.key(path), string(b)); err != nil {
		return pkgerrors.Wrapf(err, "failed to store cache entry %s", path)
	}
	return nil
}

// Match returns the entry stored under path, or storage.ErrNotFound.
func (c *Cache) Match(ctx context.Context, path string) (*Entry, error) {
	v, err := c.kv.Get(ctx, c.key(path))
	if err != nil {
		return nil, err
	}
	e := &Entry{}
	if err := json.Unmarshal([]byte(v), e); err != nil {
		return nil, pkgerrors.Wrapf(err, "corrupt cache entry %s", path)
	}
	return e, nil
}

// Paths lists the paths stored in this generation, sorted.
func (c *Cache) Paths(ctx context.Context) ([]string, error) {
	keys, err := c.kv.Keys(ctx, c.prefix())
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list cache entries")
	}
	paths := make([]string, 0, len(keys))
	for _, k := range keys {
		paths = append(paths, strings.TrimPrefix(k, c.prefix()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Activate deletes every entry belonging to another generation and returns
// how many were removed. Running it twice is harmless.
func (c *Cache) Activate(ctx context.Context) (int, error) {
	keys, err := c.kv.Keys(ctx, keyPrefix)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to list cache entries")
	}
	removed := 0
	for _, k := range keys {
		if strings.HasPrefix(k, c.prefix()) {
			continue
		}
		if err := c.kv.Delete(ctx, k); err != nil {
			return removed, pkgerrors.Wrapf(err, "failed to delete stale entry %s", k)
		}
		removed++
	}
	return removed, nil
}

// Status summarizes the generation.
type Status struct {
	Name  string   `json:"name"`
	Paths []string `json:"paths"`
}

func (c *Cache) Status(ctx context.Context) (Status, error) {
	paths, err := c.Paths(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{Name: c.name, Paths: paths}, nil
}
