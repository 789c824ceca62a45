// Package repository stores computed charts per user.
package repository

import (
	"context"
	"time"

	"github.com/okian/vedichart/internal/domain/chart"
)

// Record is a stored chart and the request it was computed from.
type Record struct {
	UserID      string
	RequestID   string
	Fingerprint string
	Chart       chart.Chart
	Summaries   []chart.Summary
	UpdatedAt   time.Time
}

// Store provides read/write access to computed charts.
type Store interface {
	// Save stores rec under rec.UserID, replacing any earlier chart, and
	// stamps UpdatedAt. It reports whether the user had no chart before.
	Save(ctx context.Context, rec Record) (bool, error)

	// Get returns the chart stored for a user, or ErrNotFound.
	Get(ctx context.Context, userID string) (Record, error)

	// Delete removes a user's chart. Deleting an unknown user is not an error.
	Delete(ctx context.Context, userID string) error

	// Count returns the number of stored charts.
	Count(ctx context.Context) int
}
