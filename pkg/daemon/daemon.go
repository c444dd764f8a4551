package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/bmi/pkg/analytics"
	"github.com/charlie0129/bmi/pkg/app"
	"github.com/charlie0129/bmi/pkg/config"
	"github.com/charlie0129/bmi/pkg/events"
	"github.com/charlie0129/bmi/pkg/i18n"
	"github.com/charlie0129/bmi/pkg/offline"
	"github.com/charlie0129/bmi/pkg/storage"
)

// openStorage opens the backend selected by conf.
func openStorage(ctx context.Context, conf config.Config) (storage.Store, io.Closer, error) {
	switch conf.Storage() {
	case config.StorageRedis:
		r, err := storage.NewRedis(ctx, storage.RedisOptions{
			Addr:      conf.RedisAddr(),
			Password:  conf.RedisPassword(),
			DB:        conf.RedisDB(),
			Namespace: "bmi:",
		})
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		f, err := storage.NewFile(conf.StoragePath())
		if err != nil {
			return nil, nil, err
		}
		return f, io.NopCloser(nil), nil
	}
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	if err := config.LoadDotEnv(".env", filepath.Join(filepath.Dir(configPath), "bmi.env")); err != nil {
		logrus.Warnf("failed to load env file: %v", err)
	}

	conf, err := config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	if err := conf.Validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid config %s", configPath)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	ctx := context.Background()

	kv, closer, err := openStorage(ctx, conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open %s storage", conf.Storage())
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logrus.Errorf("failed to close storage: %v", err)
		}
	}()

	resolver := i18n.New(i18n.EmbeddedLoader(), kv)
	lang := resolver.Init(ctx, os.Getenv("LANG"))
	resolver.OnChange(func(code string) {
		logrus.WithField("language", code).Debug("language switched")
	})
	logrus.Infof("language resolved to %s", lang)

	hub := events.NewHub()
	var sink analytics.Sink
	if endpoint := conf.AnalyticsEndpoint(); endpoint != "" {
		sink = analytics.NewHTTPSink(endpoint)
	}
	tracker := analytics.NewTracker(sink, hub)

	server, err := NewServer(Options{
		State:  app.New(kv, resolver, tracker),
		Hub:    hub,
		Cache:  offline.New(kv, conf.CacheName()),
		Origin: conf.Origin(),
	})
	if err != nil {
		return err
	}
	router := server.Router()

	refresher := server.Refresher()
	if conf.Origin() != "" {
		if err := refresher.Schedule(conf.CacheRefreshCron()); err != nil {
			return pkgerrors.Wrap(err, "failed to schedule offline cache refresh")
		}
		refresher.Start()
		go func() {
			if err := refresher.RunNow(ctx); err != nil {
				logrus.Errorf("initial offline cache install failed: %v", err)
			}
		}()
	}

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			if conf.Origin() != "" {
				if err := refresher.Schedule(conf.CacheRefreshCron()); err != nil {
					logrus.Errorf("failed to reschedule offline cache refresh: %v", err)
				}
			}
			logrus.WithFields(conf.LogrusFields()).Infof("config reloaded")
		}
	}()

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	webSrv := &http.Server{
		Addr:              conf.Listen(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Open event streams would otherwise hold Shutdown until it times out.
	webSrv.RegisterOnShutdown(hub.Close)

	// A stale socket from a previous run would make Listen fail.
	if err := os.Remove(unixSocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return pkgerrors.Wrapf(err, "failed to remove stale socket %s", unixSocketPath)
	}
	if err := os.MkdirAll(filepath.Dir(unixSocketPath), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create socket directory for %s", unixSocketPath)
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	webListener, err := net.Listen("tcp", conf.Listen())
	if err != nil {
		logrus.Fatal(err)
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Serve the page on TCP
	go func() {
		logrus.Infof("web server listening on http://%s", webListener.Addr().String())
		if err := webSrv.Serve(webListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	for _, s := range []*http.Server{webSrv, srv} {
		if err := s.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("failed to shutdown http server: %v", err)
		}
	}
	cancel()

	logrus.Info("stopping offline cache refresh")
	refresher.Stop()

	logrus.Info("flushing analytics")
	tracker.Wait()

	logrus.Info("exiting")
	return nil
}
