package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/config"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/geocoder"
	mw "github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/middleware"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/router"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/seo"
)

// Fetcher is the backend surface the pages depend on. *fetch.Client satisfies it.
type Fetcher interface {
	FetchVendors(ctx context.Context) (any, error)
	FetchEvents(ctx context.Context) (any, error)
	GetCords(ctx context.Context, address string) (any, error)
	VendorsURL() string
	EventsURL() string
	GeocodeURL(address string) string
}

type server struct {
	cfg     config.Config
	logger  *zap.Logger
	fetcher Fetcher
	routes  []router.Route
	base    string
	pages   seo.Pages
	views   *renderer
	assets  fs.FS
	now     func() time.Time
}

func newServer(cfg config.Config, logger *zap.Logger, fetcher Fetcher, templates, assets fs.FS) (*server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	routes := router.Table(cfg.Server.BasePath)
	if err := router.Validate(routes); err != nil {
		return nil, err
	}
	pages, err := seo.LoadPages(templates, "pages.yaml")
	if err != nil {
		return nil, err
	}
	views, err := newRenderer(templates, cfg.Dev.Enabled)
	if err != nil {
		return nil, err
	}
	return &server{
		cfg:     cfg,
		logger:  logger,
		fetcher: fetcher,
		routes:  routes,
		base:    strings.TrimRight(routes[0].Path, "/"),
		pages:   pages,
		views:   views,
		assets:  assets,
		now:     time.Now,
	}, nil
}

// handler builds the chi router with middleware, the route table pages and the
// supporting endpoints.
func (s *server) handler() (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(mw.HTMX)
	r.Use(mw.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get(s.base+"/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if s.assets != nil {
		r.Handle(s.base+"/assets/*", mw.AssetsWithCache(s.assets, s.base+"/assets"))
	}

	if s.cfg.Geocoder.ProxyEnabled {
		proxy, err := geocoder.NewProxy(s.cfg.Geocoder.UpstreamURL, s.logger)
		if err != nil {
			return nil, fmt.Errorf("geocoder proxy: %w", err)
		}
		r.Handle(s.base+"/geocoder/*", http.StripPrefix(s.base+"/geocoder", proxy))
	}

	err := router.Mount(r, s.routes, map[router.Page]http.HandlerFunc{
		router.PageMap:      s.mapPage,
		router.PageTest:     s.testPage,
		router.PageAdmin:    s.adminPage,
		router.PageInfo:     s.vendorsPage,
		router.PageLogin:    s.loginPage,
		router.PageRegister: s.registerPage,
		router.PageVendor:   s.managePage,
	})
	if err != nil {
		return nil, err
	}
	r.NotFound(s.notFound)
	return r, nil
}
