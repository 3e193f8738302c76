package provider

import (
	"context"
	"time"

	"trendrank/pkg/model"
)

// Provider defines the interface for market data providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Snapshot fetches current quotes for the full A-share universe.
	// An empty snapshot is reported as an error.
	Snapshot(ctx context.Context) ([]model.Quote, error)

	// DailyBars fetches forward-adjusted daily bars for a symbol over
	// [start, end], ordered ascending by date
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error)

	// IndexQuotes fetches the major index levels (SSE composite, SZSE
	// component, ChiNext)
	IndexQuotes(ctx context.Context) ([]model.IndexQuote, error)

	// RateLimit returns the request budget per minute
	RateLimit() int
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Provider  string
	Err       error
	Retryable bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
