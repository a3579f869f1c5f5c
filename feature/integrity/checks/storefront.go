package checks

import (
	"context"
	"time"
)

// Pinger is a remote service that can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StorefrontReport is the result of a storefront probe.
type StorefrontReport struct {
	Reachable bool   `json:"reachable"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// CheckStorefront probes the storefront API with the configured credentials.
func CheckStorefront(ctx context.Context, store Pinger) StorefrontReport {
	start := time.Now()
	err := store.Ping(ctx)

	report := StorefrontReport{
		Reachable: err == nil,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}
