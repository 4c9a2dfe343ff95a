package main

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/catalog"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/fetch"
	handlersPkg "github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/handlers"
	mw "github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/middleware"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/nav"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/observability"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/router"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/seo"
)

const (
	noticeVendors      = "Failed to retrieve vendor data"
	noticeEvents       = "Failed to retrieve event data"
	noticeVendorsShape = "Vendor data arrived in an unexpected format"
	noticeEventsShape  = "Event data arrived in an unexpected format"
)

// pageData fills the layout fields shared by every page.
func (s *server) pageData(r *http.Request, name, crumb string) handlersPkg.PageData {
	meta := s.pages.For(name)
	return handlersPkg.PageData{
		Title:       meta.Title,
		Site:        s.pages.Site,
		SEO:         meta,
		RequestID:   chimw.GetReqID(r.Context()),
		Base:        s.base,
		Path:        r.URL.Path,
		Nav:         nav.Build(s.routes, r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(s.routes, r.URL.Path, crumb),
	}
}

// catalogData is the outcome of loading vendors and events for one request. A failed
// load leaves the slice empty and records the notice to show.
type catalogData struct {
	Vendors []catalog.Vendor
	Events  []catalog.Event
	Notices []string
}

func (c *catalogData) apply(vm *handlersPkg.PageData) {
	for _, n := range c.Notices {
		vm.AddNotice(n)
	}
}

// loadCatalog fetches the requested collections concurrently. A failure in one does not
// cancel the other; each fetch already logged its own diagnostic.
func (s *server) loadCatalog(ctx context.Context, vendors, events bool) catalogData {
	var (
		g                   errgroup.Group
		vendorRaw, eventRaw any
		vendorErr, eventErr error
	)
	if vendors {
		g.Go(func() error {
			vendorRaw, vendorErr = s.fetcher.FetchVendors(ctx)
			return nil
		})
	}
	if events {
		g.Go(func() error {
			eventRaw, eventErr = s.fetcher.FetchEvents(ctx)
			return nil
		})
	}
	_ = g.Wait()

	logger := observability.FromContext(ctx)
	var out catalogData
	if vendors {
		if vendorErr != nil {
			out.Notices = append(out.Notices, noticeVendors)
		} else if vs, err := catalog.DecodeVendors(vendorRaw); err != nil {
			logger.Warn("vendor payload not understood", zap.Error(err))
			out.Notices = append(out.Notices, noticeVendorsShape)
		} else {
			out.Vendors = vs
		}
	}
	if events {
		if eventErr != nil {
			out.Notices = append(out.Notices, noticeEvents)
		} else if es, err := catalog.DecodeEvents(eventRaw); err != nil {
			logger.Warn("event payload not understood", zap.Error(err))
			out.Notices = append(out.Notices, noticeEventsShape)
		} else {
			out.Events = es
		}
	}
	return out
}

func (s *server) routeByPage(page router.Page) router.Route {
	for _, rt := range s.routes {
		if rt.Page == page {
			return rt
		}
	}
	return router.Route{}
}

func (s *server) manageHref(key string) string {
	rt := s.routeByPage(router.PageVendor)
	if key == "" {
		return rt.Path
	}
	return rt.Path + "?vendor=" + url.QueryEscape(key)
}

// mapPage renders today's stops and, with ?address=, the geocoded match.
func (s *server) mapPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := strings.TrimSpace(r.URL.Query().Get("address"))

	var (
		data     catalogData
		match    *fetch.Match
		geoErr   error
		geocoded bool
	)
	var g errgroup.Group
	g.Go(func() error {
		data = s.loadCatalog(ctx, true, true)
		return nil
	})
	if address != "" {
		g.Go(func() error {
			payload, err := s.fetcher.GetCords(ctx, address)
			if err != nil {
				geoErr = err
				return nil
			}
			geocoded = true
			if m, ok := fetch.FirstMatch(payload); ok {
				match = &m
			}
			return nil
		})
	}
	_ = g.Wait()

	vm := s.pageData(r, "map", "")
	data.apply(&vm)
	if geoErr != nil {
		vm.AddNotice("Failed to convert address into geocords")
	}
	view := buildMapView(data.Vendors, data.Events, s.now(), s.manageHref)
	view.Address = address
	view.Match = match
	view.LookupFailed = geocoded && match == nil
	vm.Map = view
	vm.AddJSONLD(seo.WebSite(s.pages.Site, "", s.routeByPage(router.PageInfo).Path+"?q="))
	s.views.page(w, r, http.StatusOK, "map", vm)
}

// testPage runs every fetch and prints the raw outcome.
func (s *server) testPage(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		address = defaultProbeAddress
	}
	vm := s.pageData(r, "test", "")
	vm.Test = s.runProbes(r.Context(), address)
	s.views.page(w, r, http.StatusOK, "test", vm)
}

func (s *server) adminPage(w http.ResponseWriter, r *http.Request) {
	data := s.loadCatalog(r.Context(), true, true)
	vm := s.pageData(r, "admin", "")
	data.apply(&vm)
	vm.Admin = buildAdminView(data.Vendors, data.Events, s.manageHref)
	s.views.page(w, r, http.StatusOK, "admin", vm)
}

// vendorsPage lists vendors filtered by ?q= and ?type=. htmx requests get only the list.
func (s *server) vendorsPage(w http.ResponseWriter, r *http.Request) {
	data := s.loadCatalog(r.Context(), true, false)
	q := r.URL.Query()
	view := buildVendorsView(data.Vendors, q.Get("q"), q.Get("type"), s.manageHref)

	if mw.IsHTMX(r.Context()) {
		s.views.fragment(w, r, "vendors", "vendor_list", view)
		return
	}
	vm := s.pageData(r, "vendors", "")
	data.apply(&vm)
	vm.Vendors = view
	s.views.page(w, r, http.StatusOK, "vendors", vm)
}

func (s *server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.authPage(w, r, authLogin)
}

func (s *server) registerPage(w http.ResponseWriter, r *http.Request) {
	s.authPage(w, r, authRegister)
}

func (s *server) authPage(w http.ResponseWriter, r *http.Request, mode authMode) {
	vm := s.pageData(r, string(mode), "")
	other := router.PageRegister
	if mode == authRegister {
		other = router.PageLogin
	}
	vm.Auth = buildAuthView(s.cfg.OAuth, mode, s.routeByPage(other).Path)
	s.views.page(w, r, http.StatusOK, "auth", vm)
}

// managePage shows one vendor for ?vendor=<id>, otherwise a picker.
func (s *server) managePage(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("vendor"))
	data := s.loadCatalog(r.Context(), true, id != "")
	view := buildManageView(data.Vendors, data.Events, id, s.manageHref)

	crumb := ""
	if view.Profile != nil {
		crumb = view.Profile.Name
	}
	vm := s.pageData(r, "manage", crumb)
	data.apply(&vm)
	if view.Profile != nil {
		vm.Title = view.Profile.Name + " | " + s.pages.Site
		vm.SEO.Title = vm.Title
		vm.SEO.OG.Title = view.Profile.Name
		vm.AddJSONLD(view.Profile.schema)
		if len(view.Profile.eventSchema) > 0 {
			vm.AddJSONLD(seo.Events(view.Profile.eventSchema))
		}
	}
	vm.Manage = view
	s.views.page(w, r, http.StatusOK, "manage", vm)
}

func (s *server) notFound(w http.ResponseWriter, r *http.Request) {
	if mw.IsHTMX(r.Context()) {
		mw.WriteError(w, r, http.StatusNotFound, "not found")
		return
	}
	vm := s.pageData(r, "notfound", "")
	s.views.page(w, r, http.StatusNotFound, "notfound", vm)
}
