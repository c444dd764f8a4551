package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/go-resty/resty/v2"
	pkgerrors "github.com/pkg/errors"
)

//go:embed locales/*.json
var localeFS embed.FS

// Dictionary is a nested key-value document decoded from JSON.
type Dictionary map[string]any

// Loader fetches the dictionary of one language.
type Loader interface {
	Load(ctx context.Context, code string) (Dictionary, error)
}

// FSLoader reads <dir>/<code>.json from a file system.
type FSLoader struct {
	FS  fs.FS
	Dir string
}

// EmbeddedLoader returns a loader over the dictionaries compiled into the binary.
func EmbeddedLoader() *FSLoader {
	return &FSLoader{FS: localeFS, Dir: "locales"}
}

func (l *FSLoader) Load(_ context.Context, code string) (Dictionary, error) {
	name := path.Join(l.Dir, code+".json")
	b, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read %s", name)
	}
	return parseDictionary(b)
}

// Raw returns the undecoded dictionary file of code.
func (l *FSLoader) Raw(code string) ([]byte, error) {
	if !IsSupported(code) {
		return nil, ErrUnsupportedLanguage
	}
	return fs.ReadFile(l.FS, path.Join(l.Dir, code+".json"))
}

// HTTPLoader fetches <baseURL>/locales/<code>.json.
type HTTPLoader struct {
	client *resty.Client
}

func NewHTTPLoader(baseURL string) *HTTPLoader {
	return &HTTPLoader{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second),
	}
}

func (l *HTTPLoader) Load(ctx context.Context, code string) (Dictionary, error) {
	resp, err := l.client.R().
		SetContext(ctx).
		SetPathParam("code", code).
		Get("/locales/{code}.json")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to fetch dictionary %s", code)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to load %s: got %d", code, resp.StatusCode())
	}
	return parseDictionary(resp.Body())
}

func parseDictionary(b []byte) (Dictionary, error) {
	d := Dictionary{}
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse dictionary")
	}
	return d, nil
}
