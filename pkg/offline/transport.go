package offline

import (
	"bytes"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

var _ http.RoundTripper = &Transport{}

// Transport is a network-first RoundTripper backed by a Cache.
//
// GET requests go to the network first. Successful responses from Host are
// stored on the way through. When the network fails the stored copy is
// served, then the offline document, and only then the network error.
// Other methods pass through untouched.
type Transport struct {
	// Base performs the network request. Defaults to http.DefaultTransport.
	Base  http.RoundTripper
	Cache *Cache
	// Host restricts which responses are stored. Empty stores every host.
	Host string
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base().RoundTrip(req)
	}

	path := cacheKey(req)
	resp, err := t.base().RoundTrip(req)
	if err == nil {
		if resp.StatusCode != http.StatusOK || !t.sameOrigin(req) {
			return resp, nil
		}
		resp, err = t.store(req, path, resp)
		if err == nil {
			return resp, nil
		}
	}

	ctx := req.Context()
	if e, cerr := t.Cache.Match(ctx, path); cerr == nil {
		logrus.WithField("path", path).Debugf("network failed, serving cached copy: %v", err)
		return e.Response(req), nil
	}
	if e, cerr := t.Cache.Match(ctx, OfflineDocument); cerr == nil {
		logrus.WithField("path", path).Debugf("network failed, serving offline document: %v", err)
		return e.Response(req), nil
	}
	return nil, err
}

func (t *Transport) sameOrigin(req *http.Request) bool {
	return t.Host == "" || req.URL.Host == t.Host
}

// store reads the body so it can be kept, then hands back an equivalent
// response.
func (t *Transport) store(req *http.Request, path string, resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	err = t.Cache.Put(req.Context(), path, Entry{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
	})
	if err != nil {
		logrus.WithField("path", path).Warnf("failed to cache response: %v", err)
	}
	return resp, nil
}

func cacheKey(req *http.Request) string {
	p := req.URL.Path
	if p == "" {
		p = "/"
	}
	if req.URL.RawQuery != "" {
		p += "?" + req.URL.RawQuery
	}
	return p
}
