package daemon

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/bmi/pkg/app"
	"github.com/charlie0129/bmi/pkg/events"
	"github.com/charlie0129/bmi/pkg/i18n"
	"github.com/charlie0129/bmi/pkg/offline"
)

// Options wires a Server.
type Options struct {
	State *app.State
	Hub   *events.Hub
	Cache *offline.Cache
	// Origin is where the offline cache installs from and proxies to.
	// Empty disables both.
	Origin string
	// Fetcher overrides the fetcher used to install the offline cache.
	Fetcher offline.Fetcher
}

// Server serves the page and the JSON API for one app.State.
type Server struct {
	state   *app.State
	hub     *events.Hub
	cache   *offline.Cache
	origin  string
	fetcher offline.Fetcher
	proxy   http.Handler
	locales *i18n.FSLoader

	refresher *Scheduler
	tmpl      *template.Template
	assets    fs.FS
}

func NewServer(opts Options) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse page template")
	}

	s := &Server{
		state:   opts.State,
		hub:     opts.Hub,
		cache:   opts.Cache,
		origin:  opts.Origin,
		fetcher: opts.Fetcher,
		locales: i18n.EmbeddedLoader(),
		tmpl:    tmpl,
		assets:  webRoot(),
	}

	if s.origin != "" {
		u, err := url.Parse(s.origin)
		if err != nil || u.Host == "" {
			return nil, pkgerrors.Errorf("invalid origin %q", s.origin)
		}
		if s.fetcher == nil {
			s.fetcher = offline.NewHTTPFetcher(s.origin)
		}
		s.proxy = newOfflineProxy(u, s.cache)
	}
	s.refresher = NewScheduler(s.RefreshCache, func(data any) {
		logrus.Errorf("offline cache refresh: %v", data)
	})

	return s, nil
}

// newOfflineProxy forwards /offline/<path> to <origin>/<path> through the
// network-first cache.
func newOfflineProxy(origin *url.URL, cache *offline.Cache) http.Handler {
	p := httputil.NewSingleHostReverseProxy(origin)
	director := p.Director
	p.Director = func(r *http.Request) {
		r.URL.Path = trimOfflinePrefix(r.URL.Path)
		r.URL.RawPath = ""
		director(r)
		r.Host = origin.Host
	}
	p.Transport = &offline.Transport{Cache: cache, Host: origin.Host}
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logrus.WithField("path", r.URL.Path).Warnf("offline proxy: %v", err)
		w.WriteHeader(http.StatusBadGateway)
	}
	return p
}

// RefreshCache installs a fresh copy of every offline asset and drops
// other generations.
func (s *Server) RefreshCache(ctx context.Context) error {
	if s.fetcher == nil {
		return errNoOrigin
	}
	if err := s.cache.Install(ctx, s.fetcher, offline.DefaultManifest()); err != nil {
		return err
	}
	n, err := s.cache.Activate(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logrus.WithField("cache", s.cache.Name()).Infof("removed %d stale offline entries", n)
	}
	return nil
}

func (s *Server) Refresher() *Scheduler {
	return s.refresher
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))

	router.GET("/", s.getPage)
	router.GET("/index.html", s.getPage)
	for p, file := range staticAssets {
		router.GET(p, s.getAsset(file))
	}
	router.GET("/gauge.svg", s.getGauge)
	router.GET("/gauge.png", s.getGauge)
	router.GET("/locales/:file", s.getLocale)
	router.GET("/js/locales/:file", s.getLocale)
	router.GET("/version", getVersion)

	api := router.Group("/api")
	api.GET("/view", s.getView)
	api.POST("/calculate", s.calculate)
	api.PUT("/unit", s.setUnit)
	api.GET("/history", s.getHistory)
	api.DELETE("/history", s.clearHistory)
	api.GET("/language", s.getLanguage)
	api.PUT("/language", s.setLanguage)
	api.GET("/theme", s.getTheme)
	api.PUT("/theme", s.setTheme)
	api.POST("/share", s.share)
	api.GET("/events", s.streamEvents)
	api.POST("/events", s.recordEvent)
	api.GET("/cache", s.getCache)
	api.POST("/cache/refresh", s.refreshCache)

	if s.proxy != nil {
		router.GET("/offline/*path", gin.WrapH(s.proxy))
	}

	return router
}
