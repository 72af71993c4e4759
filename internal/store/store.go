// Package store persists detection runs and their output tables.
// Persistence is additive: the detect pipeline runs fully in memory
// and only touches a store when asked to save.
package store

import (
	"context"

	"github.com/justice-collab/disruption-cli/internal/model"
)

// RunFilter specifies criteria for listing detection runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for detection results.
type Store interface {
	CreateRun(ctx context.Context, params model.RunParams) (*model.DetectionRun, error)
	SaveResult(ctx context.Context, runID string, result *model.DetectionResult) error
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	GetRun(ctx context.Context, runID string) (*model.DetectionRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.DetectionRun, error)

	Migrate(ctx context.Context) error
	Close() error
}
