// Package fetch reads vendor, event and geocoding data from the backend services.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	opVendors = "vendors"
	opEvents  = "events"
	opGeocode = "geocode"

	msgVendorsFailed = "Failed to retrieve vendor data"
	msgEventsFailed  = "Failed to retrieve event data"
	msgGeocodeFailed = "Failed to convert address into geocords"

	defaultBenchmark    = "4"
	defaultMaxBodyBytes = 10 << 20
	requestIDHeader     = "X-Request-ID"

	instrumentationName = "github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/fetch"
)

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Config carries the backend locations resolved once at startup.
type Config struct {
	APIBaseURL      string
	GeocoderBaseURL string
	Benchmark       string
	// Timeout bounds each request; zero leaves it to the caller's context.
	Timeout      time.Duration
	MaxBodyBytes int64
}

// Client performs the vendor, event and geocoding lookups. It is immutable after New
// and safe for concurrent use.
type Client struct {
	vendorsURL string
	eventsURL  string
	geocodeURL url.URL
	benchmark  string
	timeout    time.Duration
	maxBody    int64

	http   HTTPClient
	logger *zap.Logger
	tracer trace.Tracer
	meter  metric.Meter

	latency        metric.Float64Histogram
	latencyEnabled bool
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger that receives fetch diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer overrides the tracer used for client spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMeter overrides the meter used for fetch latency.
func WithMeter(meter metric.Meter) Option {
	return func(c *Client) {
		if meter != nil {
			c.meter = meter
		}
	}
}

// New validates cfg and builds a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	apiBase, err := parseBase("api", cfg.APIBaseURL)
	if err != nil {
		return nil, err
	}
	geoBase, err := parseBase("geocoder", cfg.GeocoderBaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		vendorsURL: apiBase.JoinPath("vendors").String(),
		eventsURL:  apiBase.JoinPath("events").String(),
		geocodeURL: *geoBase.JoinPath("locations", "onelineaddress"),
		benchmark:  strings.TrimSpace(cfg.Benchmark),
		timeout:    cfg.Timeout,
		maxBody:    cfg.MaxBodyBytes,
		http:       http.DefaultClient,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(instrumentationName),
		meter:      otel.GetMeterProvider().Meter(instrumentationName),
	}
	if c.benchmark == "" {
		c.benchmark = defaultBenchmark
	}
	if c.maxBody <= 0 {
		c.maxBody = defaultMaxBodyBytes
	}
	if c.timeout < 0 {
		c.timeout = 0
	}
	for _, opt := range opts {
		opt(c)
	}

	latency, err := c.meter.Float64Histogram(
		"fetch.request.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds for backend fetches"),
	)
	if err != nil {
		c.logger.Warn("fetch: unable to register latency metric", zap.Error(err))
	}
	c.latency = latency
	c.latencyEnabled = err == nil
	return c, nil
}

// FetchVendors returns the parsed body of GET {api}/vendors.
func (c *Client) FetchVendors(ctx context.Context) (any, error) {
	return c.getJSON(ctx, opVendors, c.vendorsURL, msgVendorsFailed)
}

// FetchEvents returns the parsed body of GET {api}/events.
func (c *Client) FetchEvents(ctx context.Context) (any, error) {
	return c.getJSON(ctx, opEvents, c.eventsURL, msgEventsFailed)
}

// VendorsURL is the endpoint FetchVendors requests.
func (c *Client) VendorsURL() string { return c.vendorsURL }

// EventsURL is the endpoint FetchEvents requests.
func (c *Client) EventsURL() string { return c.eventsURL }

// GetCords looks up a free-text address with the one-line address geocoder and returns
// the parsed response.
func (c *Client) GetCords(ctx context.Context, address string) (any, error) {
	c.logger.Debug("geocode lookup", zap.String("address", address))
	payload, err := c.getJSON(ctx, opGeocode, c.GeocodeURL(address), msgGeocodeFailed)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("geocode result", zap.Any("result", payload))
	return payload, nil
}

// GeocodeURL builds the lookup URL for address. The address is query-escaped.
func (c *Client) GeocodeURL(address string) string {
	q := url.Values{}
	q.Set("address", address)
	q.Set("benchmark", c.benchmark)
	q.Set("format", "json")
	u := c.geocodeURL
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, op, endpoint, failure string) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	reqID := requestID(ctx)

	ctx, span := c.tracer.Start(ctx, "fetch."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("url.full", endpoint),
		),
	)
	defer span.End()

	start := time.Now()
	payload, err := c.do(ctx, op, endpoint, reqID)
	c.recordLatency(ctx, op, time.Since(start), err)
	if err != nil {
		var fe *Error
		errors.As(err, &fe)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(fe.Kind))

		fields := []zap.Field{
			zap.String("op", op),
			zap.String("kind", string(fe.Kind)),
			zap.String("url", endpoint),
			zap.String("request_id", reqID),
			zap.Error(fe.Err),
		}
		if fe.StatusCode != 0 {
			fields = append(fields, zap.Int("status", fe.StatusCode))
		}
		c.logger.Error(failure, fields...)
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return payload, nil
}

func (c *Client) do(ctx context.Context, op, endpoint, reqID string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &Error{
			Op:         op,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			URL:        endpoint,
			Err:        fmt.Errorf("Error %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > c.maxBody {
		return nil, &Error{Op: op, Kind: KindDecode, URL: endpoint, Err: ErrBodyTooLarge}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, URL: endpoint, Err: fmt.Errorf("decode json: %w", err)}
	}
	return payload, nil
}

func (c *Client) recordLatency(ctx context.Context, op string, d time.Duration, err error) {
	if !c.latencyEnabled {
		return
	}
	outcome := "ok"
	var fe *Error
	if errors.As(err, &fe) {
		outcome = string(fe.Kind)
	}
	c.latency.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

func parseBase(name, raw string) (*url.URL, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return nil, fmt.Errorf("fetch: %s base URL is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("fetch: parse %s base URL: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("fetch: %s base URL must be absolute http(s): %q", name, raw)
	}
	return u, nil
}

// requestID reuses the inbound request id when the call happens inside a handler.
func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return ulid.Make().String()
}
