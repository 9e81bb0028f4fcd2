package repository

import (
	"context"

	"github.com/cockroachdb/errors"

	"netlab/internal/domain"
)

// ErrNotFound is returned when a requested run does not exist
var ErrNotFound = errors.New("not found")

// Repository defines the interface for diagnostic run storage
type Repository interface {
	// SaveRun stores run with its parsed result and sets run.ID
	SaveRun(ctx context.Context, run *domain.DiagnosticRun) error

	// GetRun loads a run by ID, returning ErrNotFound if absent
	GetRun(ctx context.Context, id int64) (*domain.DiagnosticRun, error)

	// ListRuns returns runs newest first. An empty host lists every host;
	// limit <= 0 means no limit.
	ListRuns(ctx context.Context, host string, limit int) ([]*domain.DiagnosticRun, error)

	// DeleteRuns removes all runs recorded for host and reports how many
	DeleteRuns(ctx context.Context, host string) (int64, error)

	// Close releases resources
	Close() error
}
