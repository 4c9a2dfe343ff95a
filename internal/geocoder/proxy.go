// Package geocoder forwards browser and server geocoding lookups to the public census
// geocoder so the app can reach it from its own origin.
package geocoder

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewProxy returns a handler that forwards requests to upstream. Callers mount it under a
// prefix and strip that prefix first; the remaining path and the query are appended to
// upstream. Upstream failures answer 502.
func NewProxy(upstream string, logger *zap.Logger) (http.Handler, error) {
	target, err := parseUpstream(upstream)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
			pr.Out.Header.Del("Cookie")
			if rid := chiMid.GetReqID(pr.In.Context()); rid != "" {
				pr.Out.Header.Set("X-Request-ID", rid)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("geocoder upstream failed",
				zap.String("path", r.URL.Path),
				zap.String("request_id", chiMid.GetReqID(r.Context())),
				zap.Error(err),
			)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		},
	}
	return proxy, nil
}

func parseUpstream(raw string) (*url.URL, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return nil, errors.New("geocoder: upstream URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("geocoder: parse upstream: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("geocoder: upstream must be an absolute http(s) URL: %q", raw)
	}
	return u, nil
}
