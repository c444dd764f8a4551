package offline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Fetcher retrieves a single asset.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (Entry, error)
}

// HTTPFetcher fetches assets relative to a base URL.
type HTTPFetcher struct {
	client *resty.Client
}

func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, path string) (Entry, error) {
	resp, err := f.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return Entry{}, pkgerrors.Wrapf(err, "failed to fetch %s", path)
	}
	if resp.StatusCode() != 200 {
		return Entry{}, fmt.Errorf("failed to fetch %s: got %d", path, resp.StatusCode())
	}
	return Entry{
		Status: resp.StatusCode(),
		Header: resp.Header(),
		Body:   resp.Body(),
	}, nil
}

// Install fetches every path in manifest and stores them. Nothing is stored
// unless every fetch succeeds.
func (c *Cache) Install(ctx context.Context, f Fetcher, manifest []string) error {
	fetched := make([]Entry, 0, len(manifest))
	for _, p := range manifest {
		e, err := f.Fetch(ctx, p)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to install %s", c.name)
		}
		fetched = append(fetched, e)
	}

	now := c.now()
	for i, p := range manifest {
		e := fetched[i]
		e.StoredAt = now
		if err := c.Put(ctx, p, e); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"cache":  c.name,
		"assets": len(manifest),
	}).Info("offline cache installed")
	return nil
}
