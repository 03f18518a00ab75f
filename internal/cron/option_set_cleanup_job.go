package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/craftlane/personalizer-backend/pkg/db/models"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	orphanRetentionDays = 7
	orphanBatchSize     = 250
)

// optionSetCleanupRepo is the slice of the template repository this job uses.
type optionSetCleanupRepo interface {
	ListOrphanedOptionSets(ctx context.Context, limit int) ([]models.OptionSet, error)
	DeleteOptionSet(ctx context.Context, id uuid.UUID) error
}

// OptionSetCleanupJobParams configure the orphaned option set cleanup.
type OptionSetCleanupJobParams struct {
	Logger     *logger.Logger
	Repository optionSetCleanupRepo
	// Retention is how many days an orphaned option set survives before
	// deletion, giving merchants a window to relink it.
	Retention int
	BatchSize int
}

// NewOptionSetCleanupJob deletes option sets whose product links are all gone.
func NewOptionSetCleanupJob(params OptionSetCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("template repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = orphanRetentionDays
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = orphanBatchSize
	}
	return &optionSetCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		batch:     batch,
		now:       time.Now,
	}, nil
}

type optionSetCleanupJob struct {
	logg      *logger.Logger
	repo      optionSetCleanupRepo
	retention int
	batch     int
	now       func() time.Time
}

func (j *optionSetCleanupJob) Name() string { return "option-set-cleanup" }

func (j *optionSetCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)

	orphans, err := j.repo.ListOrphanedOptionSets(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list orphaned option sets: %w", err)
	}

	var deleted int
	var errs []error
	for _, set := range orphans {
		if set.UpdatedAt.After(cutoff) {
			continue
		}
		if err := j.repo.DeleteOptionSet(ctx, set.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete option set %s: %w", set.ID, err))
			continue
		}
		deleted++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"candidates":   len(orphans),
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "option set cleanup complete")
	return multierr.Combine(errs...)
}
