package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/fetch"
	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/format"
)

const defaultProbeAddress = "4600 Silver Hill Rd, Washington, DC 20233"

// TestView is the diagnostics page view model.
type TestView struct {
	Address string
	Probes  []Probe
}

// Probe is the outcome of one backend call.
type Probe struct {
	Name     string
	URL      string
	OK       bool
	Body     string
	Message  string
	Kind     fetch.Kind
	Status   int
	Duration time.Duration
}

// runProbes calls all three backends concurrently and records each result in order.
func (s *server) runProbes(ctx context.Context, address string) TestView {
	probes := []struct {
		name, url, message string
		call               func(context.Context) (any, error)
	}{
		{"Vendors", s.fetcher.VendorsURL(), noticeVendors, s.fetcher.FetchVendors},
		{"Events", s.fetcher.EventsURL(), noticeEvents, s.fetcher.FetchEvents},
		{"Geocoder", s.fetcher.GeocodeURL(address), "Failed to convert address into geocords", func(ctx context.Context) (any, error) {
			return s.fetcher.GetCords(ctx, address)
		}},
	}

	out := TestView{Address: address, Probes: make([]Probe, len(probes))}
	var g errgroup.Group
	for i, p := range probes {
		g.Go(func() error {
			start := time.Now()
			payload, err := p.call(ctx)
			res := Probe{Name: p.name, URL: p.url, Duration: time.Since(start).Round(time.Millisecond)}
			if err != nil {
				res.Message = p.message
				res.Kind = fetch.KindTransport
				var fe *fetch.Error
				if errors.As(err, &fe) {
					res.Kind = fe.Kind
				}
				res.Status = fetch.StatusCode(err)
			} else {
				res.OK = true
				res.Body = format.JSON(payload)
			}
			out.Probes[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return out
}
