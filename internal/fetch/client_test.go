package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type operation struct {
	name    string
	call    func(*Client, context.Context) (any, error)
	message string
	path    string
}

var operations = []operation{
	{
		name:    "vendors",
		call:    func(c *Client, ctx context.Context) (any, error) { return c.FetchVendors(ctx) },
		message: "Failed to retrieve vendor data",
		path:    "/api/vendors",
	},
	{
		name:    "events",
		call:    func(c *Client, ctx context.Context) (any, error) { return c.FetchEvents(ctx) },
		message: "Failed to retrieve event data",
		path:    "/api/events",
	},
	{
		name:    "geocode",
		call:    func(c *Client, ctx context.Context) (any, error) { return c.GetCords(ctx, "1 Main St") },
		message: "Failed to convert address into geocords",
		path:    "/geocoder/locations/onelineaddress",
	},
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) (*Client, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	opts = append([]Option{WithHTTPClient(srv.Client()), WithLogger(zap.New(core))}, opts...)
	c, err := New(Config{
		APIBaseURL:      srv.URL + "/api",
		GeocoderBaseURL: srv.URL + "/geocoder/",
	}, opts...)
	require.NoError(t, err)
	return c, logs
}

func errorLogs(logs *observer.ObservedLogs) []observer.LoggedEntry {
	return logs.FilterLevelExact(zapcore.ErrorLevel).All()
}

type seenRequest struct {
	method    string
	path      string
	accept    string
	requestID string
}

func TestSuccessReturnsParsedBodyUnchanged(t *testing.T) {
	for _, op := range operations {
		t.Run(op.name, func(t *testing.T) {
			seen := make(chan seenRequest, 1)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen <- seenRequest{
					method:    r.Method,
					path:      r.URL.Path,
					accept:    r.Header.Get("Accept"),
					requestID: r.Header.Get("X-Request-ID"),
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"vendors":[{"id":1}],"nested":{"ok":true,"list":["a",null]}}`))
			}))
			t.Cleanup(srv.Close)

			c, logs := newTestClient(t, srv)
			got, err := op.call(c, context.Background())
			require.NoError(t, err)
			require.Equal(t, map[string]any{
				"vendors": []any{map[string]any{"id": float64(1)}},
				"nested":  map[string]any{"ok": true, "list": []any{"a", nil}},
			}, got)
			require.Empty(t, errorLogs(logs))

			req := <-seen
			require.Equal(t, op.path, req.path)
			require.Equal(t, http.MethodGet, req.method)
			require.Equal(t, "application/json", req.accept)
			require.NotEmpty(t, req.requestID)
		})
	}
}

func TestNonSuccessStatusYieldsStatusError(t *testing.T) {
	for _, op := range operations {
		t.Run(op.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			}))
			t.Cleanup(srv.Close)

			c, logs := newTestClient(t, srv)
			got, err := op.call(c, context.Background())
			require.Nil(t, got)
			require.Error(t, err)
			require.True(t, IsKind(err, KindStatus))
			require.Equal(t, http.StatusInternalServerError, StatusCode(err))
			require.EqualError(t, errors.Unwrap(err), "Error 500")

			entries := errorLogs(logs)
			require.Len(t, entries, 1)
			require.Equal(t, op.message, entries[0].Message)
			require.Equal(t, int64(500), entries[0].ContextMap()["status"])
			require.Equal(t, "Error 500", entries[0].ContextMap()["error"])
		})
	}
}

func TestMalformedBodyYieldsDecodeError(t *testing.T) {
	bodies := map[string]string{
		"garbage":  `<html>not json</html>`,
		"empty":    ``,
		"trailing": `{"a":1} {"b":2}`,
	}
	for _, op := range operations {
		for label, body := range bodies {
			t.Run(op.name+"/"+label, func(t *testing.T) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte(body))
				}))
				t.Cleanup(srv.Close)

				c, logs := newTestClient(t, srv)
				got, err := op.call(c, context.Background())
				require.Nil(t, got)
				require.True(t, IsKind(err, KindDecode), "got %v", err)
				require.Zero(t, StatusCode(err))

				entries := errorLogs(logs)
				require.Len(t, entries, 1)
				require.Equal(t, op.message, entries[0].Message)
			})
		}
	}
}

func TestTransportFailureYieldsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	for _, op := range operations {
		t.Run(op.name, func(t *testing.T) {
			c, logs := newTestClient(t, srv)
			got, err := op.call(c, context.Background())
			require.Nil(t, got)
			require.True(t, IsKind(err, KindTransport), "got %v", err)

			var fe *Error
			require.True(t, errors.As(err, &fe))
			require.Equal(t, op.name, fe.Op)
			require.Len(t, errorLogs(logs), 1)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["0123456789","0123456789"]`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{
		APIBaseURL:      srv.URL,
		GeocoderBaseURL: srv.URL,
		MaxBodyBytes:    10,
	}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.FetchVendors(context.Background())
	require.True(t, IsKind(err, KindDecode))
	require.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestTimeoutBoundsRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, logs := newTestClient(t, srv)
	c.timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := c.FetchEvents(context.Background())
	require.True(t, IsKind(err, KindTransport))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, errorLogs(logs), 1)
}

func TestGetCordsEncodesAddress(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"result":{"addressMatches":[]}}`))
	}))
	t.Cleanup(srv.Close)

	c, logs := newTestClient(t, srv)
	address := "12 Oak St & 3rd Ave #4, Springfield"
	_, err := c.GetCords(context.Background(), address)
	require.NoError(t, err)

	raw := gotQuery.Load().(string)
	require.Equal(t, "address=12+Oak+St+%26+3rd+Ave+%234%2C+Springfield&benchmark=4&format=json", raw)

	parsed, err := url.ParseQuery(raw)
	require.NoError(t, err)
	require.Equal(t, address, parsed.Get("address"))

	debug := logs.FilterMessage("geocode lookup").All()
	require.Len(t, debug, 1)
	require.Equal(t, address, debug[0].ContextMap()["address"])
	require.Empty(t, errorLogs(logs))
}

func TestGeocodeURLUsesBenchmark(t *testing.T) {
	c, err := New(Config{
		APIBaseURL:      "http://localhost:8080/api",
		GeocoderBaseURL: "http://localhost:5173/geocoder",
		Benchmark:       "Public_AR_Current",
	})
	require.NoError(t, err)
	require.Equal(t,
		"http://localhost:5173/geocoder/locations/onelineaddress?address=a+b&benchmark=Public_AR_Current&format=json",
		c.GeocodeURL("a b"))
	require.Equal(t, "http://localhost:8080/api/vendors", c.VendorsURL())
	require.Equal(t, "http://localhost:8080/api/events", c.EventsURL())
}

func TestRequestIDPropagatesFromContext(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c, _ := newTestClient(t, srv)
	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-123")
	_, err := c.FetchVendors(ctx)
	require.NoError(t, err)
	require.Equal(t, "req-123", got.Load())
}

func TestNewRejectsBadBaseURLs(t *testing.T) {
	_, err := New(Config{APIBaseURL: "", GeocoderBaseURL: "http://geo"})
	require.Error(t, err)

	_, err = New(Config{APIBaseURL: "localhost:8080/api", GeocoderBaseURL: "http://geo"})
	require.Error(t, err)

	_, err = New(Config{APIBaseURL: "http://api", GeocoderBaseURL: "ftp://geo"})
	require.Error(t, err)
}

func TestErrorString(t *testing.T) {
	err := &Error{Op: "vendors", Kind: KindStatus, StatusCode: 503}
	require.Equal(t, "fetch: vendors: status error (503)", err.Error())

	err = &Error{Op: "events", Kind: KindDecode, Err: errors.New("bad")}
	require.Equal(t, "fetch: events: decode error: bad", err.Error())
	require.False(t, IsKind(errors.New("plain"), KindDecode))
}

func TestWithMeterAcceptsProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c, _ := newTestClient(t, srv, WithMeter(noop.NewMeterProvider().Meter("test")))
	require.True(t, c.latencyEnabled)
	_, err := c.FetchEvents(context.Background())
	require.NoError(t, err)
}
