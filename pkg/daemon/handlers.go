package daemon

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/bmi/pkg/app"
	"github.com/charlie0129/bmi/pkg/bmi"
	"github.com/charlie0129/bmi/pkg/client"
	"github.com/charlie0129/bmi/pkg/events"
	"github.com/charlie0129/bmi/pkg/gauge"
	"github.com/charlie0129/bmi/pkg/i18n"
	"github.com/charlie0129/bmi/pkg/offline"
	"github.com/charlie0129/bmi/pkg/version"
)

const maxPixelRatio = 4

var (
	errNoOrigin             = errors.New("no origin configured for the offline cache")
	errNoResult             = errors.New("nothing calculated yet")
	errConfirmationRequired = errors.New("confirmation required: pass confirm=true")
)

func (s *Server) view(c *gin.Context) app.View {
	return app.Render(s.state.Snapshot(c.Request.Context()), s.state.Resolver())
}

func (s *Server) getPage(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html.tmpl", s.view(c)); err != nil {
		logrus.Errorf("failed to render page: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) getAsset(file string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.FileFromFS(file, http.FS(s.assets))
	}
}

func (s *Server) getView(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.view(c))
}

func (s *Server) calculate(c *gin.Context) {
	var req client.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	r := s.state.Calculate(c.Request.Context(), req.Height, req.Weight)
	c.IndentedJSON(http.StatusOK, client.ResultResponse{Result: r, View: s.view(c)})
}

func (s *Server) setUnit(c *gin.Context) {
	v, err := readValue(c)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	u, err := bmi.ParseUnit(v)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	r, err := s.state.SwitchUnit(c.Request.Context(), u)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	logrus.Infof("switched unit to %s", u)
	c.IndentedJSON(http.StatusOK, client.ResultResponse{Result: r, View: s.view(c)})
}

func (s *Server) getHistory(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.state.Snapshot(c.Request.Context()).History)
}

func (s *Server) clearHistory(c *gin.Context) {
	confirmed := c.Query("confirm") == "true"
	if !s.state.ClearHistory(c.Request.Context(), func() bool { return confirmed }) {
		abort(c, http.StatusBadRequest, errConfirmationRequired)
		return
	}

	logrus.Info("history cleared")
	c.IndentedJSON(http.StatusOK, "history cleared")
}

func (s *Server) getLanguage(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.state.Resolver().Language())
}

func (s *Server) setLanguage(c *gin.Context) {
	code, err := readValue(c)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	if err := s.state.SetLanguage(c.Request.Context(), code); err != nil {
		if errors.Is(err, i18n.ErrUnsupportedLanguage) {
			abort(c, http.StatusBadRequest, fmt.Errorf("%w: %s", err, code))
			return
		}
		abort(c, http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set language to %s", code)
	c.IndentedJSON(http.StatusOK, code)
}

func (s *Server) getTheme(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.state.Theme(c.Request.Context()))
}

func (s *Server) setTheme(c *gin.Context) {
	v, err := readValue(c)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	var t app.Theme
	if v == "toggle" {
		t, err = s.state.ToggleTheme(ctx)
		if err != nil {
			abort(c, http.StatusInternalServerError, err)
			return
		}
	} else {
		t, err = app.ParseTheme(v)
		if err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
		if err := s.state.SetTheme(ctx, t); err != nil {
			abort(c, http.StatusInternalServerError, err)
			return
		}
	}

	c.IndentedJSON(http.StatusOK, t)
}

func (s *Server) share(c *gin.Context) {
	var req client.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if req.Method == "" {
		req.Method = "native"
	}

	msg, ok := s.state.Share(c.Request.Context(), req.Method)
	if !ok {
		abort(c, http.StatusConflict, errNoResult)
		return
	}
	c.IndentedJSON(http.StatusOK, client.ShareResponse{Message: msg})
}

func (s *Server) streamEvents(c *gin.Context) {
	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Content-Type", "text/event-stream")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case e, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(e.Name, string(e.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// recordEvent takes the engagement events only the page can observe.
func (s *Server) recordEvent(c *gin.Context) {
	var req client.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	tracker := s.state.Tracker()
	var emitted bool
	switch req.Name {
	case events.Engagement:
		emitted = tracker.FirstInteraction()
	case events.ScrollEngagement:
		emitted = tracker.Scroll(int(number(req.Params["scrollY"])))
	case events.TimerEngagement:
		tracker.Dwell(msec(number(req.Params["engagement_time_msec"])))
		emitted = true
	default:
		abort(c, http.StatusBadRequest, fmt.Errorf("unknown event %q", req.Name))
		return
	}

	c.IndentedJSON(http.StatusAccepted, emitted)
}

type cacheResponse struct {
	Status  offline.Status  `json:"status"`
	Origin  string          `json:"origin"`
	Refresh SchedulerStatus `json:"refresh"`
}

func (s *Server) getCache(c *gin.Context) {
	st, err := s.cache.Status(c.Request.Context())
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, cacheResponse{Status: st, Origin: s.origin, Refresh: s.refresher.Status()})
}

func (s *Server) refreshCache(c *gin.Context) {
	if s.fetcher == nil {
		abort(c, http.StatusBadRequest, errNoOrigin)
		return
	}
	if err := s.refresher.RunNow(c.Request.Context()); err != nil {
		logrus.Errorf("offline cache refresh failed: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return
	}
	s.getCache(c)
}

func (s *Server) getLocale(c *gin.Context) {
	code := strings.TrimSuffix(c.Param("file"), ".json")
	if !i18n.IsSupported(code) {
		abort(c, http.StatusNotFound, fmt.Errorf("%w: %s", i18n.ErrUnsupportedLanguage, code))
		return
	}
	b, err := s.locales.Raw(code)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", b)
}

func (s *Server) getGauge(c *gin.Context) {
	f := gauge.SVG
	if strings.HasSuffix(c.Request.URL.Path, ".png") {
		f = gauge.PNG
	}

	value := 0.0
	if q := c.Query("bmi"); q != "" {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil {
			abort(c, http.StatusBadRequest, fmt.Errorf("invalid bmi %q", q))
			return
		}
		value = v
	} else if r := s.state.Snapshot(c.Request.Context()).Result; r != nil {
		value = r.BMI
	}

	ratio := 1.0
	if q := c.Query("dpr"); q != "" {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil || v > maxPixelRatio {
			abort(c, http.StatusBadRequest, fmt.Errorf("invalid dpr %q: must be a number up to %d", q, maxPixelRatio))
			return
		}
		ratio = v
	}

	var buf bytes.Buffer
	l := gauge.NewLayout(value, gauge.DefaultWidth, gauge.DefaultHeight, ratio)
	if err := gauge.Render(&buf, f, l); err != nil {
		logrus.Errorf("failed to render gauge: %v", err)
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, f.ContentType(), buf.Bytes())
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func number(v any) float64 {
	f, _ := v.(float64)
	return f
}
