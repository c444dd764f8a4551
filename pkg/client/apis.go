package client

import (
	"encoding/json"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/bmi/pkg/app"
	"github.com/charlie0129/bmi/pkg/bmi"
	"github.com/charlie0129/bmi/pkg/history"
	"github.com/charlie0129/bmi/pkg/share"
)

func (c *Client) Calculate(height, weight string) (*ResultResponse, error) {
	payload, err := json.Marshal(CalculateRequest{Height: height, Weight: weight})
	if err != nil {
		return nil, err
	}
	ret, err := c.Post("/api/calculate", string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to calculate")
	}
	return decode[ResultResponse](ret, "calculation result")
}

func (c *Client) SwitchUnit(u bmi.Unit) (*ResultResponse, error) {
	ret, err := c.Put("/api/unit", string(u))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to switch unit to %s", u)
	}
	return decode[ResultResponse](ret, "calculation result")
}

func (c *Client) GetView() (*app.View, error) {
	ret, err := c.Get("/api/view")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get view")
	}
	return decode[app.View](ret, "view")
}

func (c *Client) GetHistory() ([]history.Entry, error) {
	ret, err := c.Get("/api/history")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get history")
	}
	entries, err := decode[[]history.Entry](ret, "history")
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

// ClearHistory deletes the history. The caller is expected to have asked
// for confirmation already.
func (c *Client) ClearHistory() (string, error) {
	return c.Delete("/api/history?confirm=true")
}

func (c *Client) GetLanguage() (string, error) {
	ret, err := c.Get("/api/language")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get language")
	}
	return unquote(ret)
}

func (c *Client) SetLanguage(code string) (string, error) {
	return c.Put("/api/language", code)
}

func (c *Client) GetTheme() (app.Theme, error) {
	ret, err := c.Get("/api/theme")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get theme")
	}
	s, err := unquote(ret)
	if err != nil {
		return "", err
	}
	return app.ParseTheme(s)
}

func (c *Client) SetTheme(t app.Theme) (string, error) {
	return c.Put("/api/theme", string(t))
}

// Share asks the daemon for the share message. Delivering it is up to the
// caller; method is only reported.
func (c *Client) Share(method string) (*share.Message, error) {
	payload, err := json.Marshal(ShareRequest{Method: method})
	if err != nil {
		return nil, err
	}
	ret, err := c.Post("/api/share", string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to share")
	}
	resp, err := decode[ShareResponse](ret, "share message")
	if err != nil {
		return nil, err
	}
	return &resp.Message, nil
}

func (c *Client) Emit(name string, params map[string]any) (string, error) {
	payload, err := json.Marshal(EventRequest{Name: name, Params: params})
	if err != nil {
		return "", err
	}
	return c.Post("/api/events", string(payload))
}

func (c *Client) GetCacheStatus() (*CacheResponse, error) {
	ret, err := c.Get("/api/cache")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get offline cache status")
	}
	return decode[CacheResponse](ret, "offline cache status")
}

func (c *Client) RefreshCache() (*CacheResponse, error) {
	ret, err := c.Post("/api/cache/refresh", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to refresh offline cache")
	}
	return decode[CacheResponse](ret, "offline cache status")
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	return unquote(ret)
}

func decode[T any](ret, what string) (*T, error) {
	var v T
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal %s", what)
	}
	return &v, nil
}

// unquote decodes a JSON string response.
func unquote(ret string) (string, error) {
	var s string
	if err := json.Unmarshal([]byte(ret), &s); err != nil {
		return "", pkgerrors.Wrapf(err, "unexpected response: %s", ret)
	}
	return s, nil
}
