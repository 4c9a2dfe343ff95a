package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/config"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/fetch"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/observability"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/public"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/templates"
)

func main() {
	var (
		addr     string
		tmplPath string
	)
	flag.StringVar(&addr, "addr", "", "HTTP listen address (overrides FTF_WEB_PORT)")
	flag.StringVar(&tmplPath, "templates", "", "templates directory; reparsed per request in dev mode")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// the logger is not configured yet
		bootstrap, _ := observability.NewLogger("info")
		bootstrap.Fatal("load config", zap.Error(err))
	}
	if tmplPath != "" {
		cfg.Dev.TemplatesDir = tmplPath
	}
	if addr == "" {
		addr = cfg.Server.Addr()
	} else if cfg.Geocoder.BaseURLDerived {
		cfg.Geocoder.BaseURL = cfg.DefaultGeocoderURL(addr)
	}

	logger, err := observability.NewLogger(cfg.Dev.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, addr, logger); err != nil {
		logger.Fatal("web server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, addr string, logger *zap.Logger) error {
	client, err := fetch.New(fetch.Config{
		APIBaseURL:      cfg.Backend.APIBaseURL,
		GeocoderBaseURL: cfg.Geocoder.BaseURL,
		Benchmark:       cfg.Geocoder.Benchmark,
		Timeout:         cfg.Backend.FetchTimeout,
		MaxBodyBytes:    cfg.Backend.MaxBodyBytes,
	}, fetch.WithLogger(logger.Named("fetch")))
	if err != nil {
		return err
	}

	tmplFS := fs.FS(templates.FS)
	if dir := strings.TrimSpace(cfg.Dev.TemplatesDir); dir != "" {
		tmplFS = os.DirFS(dir)
	}
	assets, err := public.StaticFS()
	if err != nil {
		return err
	}

	srv, err := newServer(cfg, logger, client, tmplFS, assets)
	if err != nil {
		return err
	}
	h, err := srv.handler()
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", addr),
			zap.String("base_path", cfg.Server.BasePath),
			zap.Bool("dev", cfg.Dev.Enabled),
			zap.String("api", cfg.Backend.APIBaseURL),
			zap.Bool("geocoder_proxy", cfg.Geocoder.ProxyEnabled),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
