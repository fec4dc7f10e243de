// Package storage defines the persistence interface for summarization runs.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/yoyaku/internal/models"
)

// ErrNotFound is returned when a summary does not exist.
var ErrNotFound = errors.New("summary not found")

// Storage defines summary persistence operations.
type Storage interface {
	CreateSummary(ctx context.Context, rec *models.SummaryRecord) error
	ReplaceSummary(ctx context.Context, rec *models.SummaryRecord) error
	GetSummary(ctx context.Context, id string) (*models.SummaryRecord, error)
	GetSummaryBySource(ctx context.Context, sourceID string) (*models.SummaryRecord, error)
	ListSummaries(ctx context.Context, offset, limit int) ([]*models.SummaryRecord, error)
	DeleteSummary(ctx context.Context, id string) error
	DeleteSummaryBySource(ctx context.Context, sourceID string) error
	DeleteSummariesUnder(ctx context.Context, dir string) (int64, error)

	// Stats
	CountSummaries(ctx context.Context) (int64, error)
	CountSentences(ctx context.Context) (int64, error)

	Close() error
}
