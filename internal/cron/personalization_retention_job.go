package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/craftlane/personalizer-backend/pkg/logger"
)

const personalizationRetentionDays = 90

// personalizationRetentionRepo is the slice of the storefront repository this
// job uses.
type personalizationRetentionRepo interface {
	DeletePersonalizationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PersonalizationRetentionJobParams configure the submission retention job.
type PersonalizationRetentionJobParams struct {
	Logger     *logger.Logger
	Repository personalizationRetentionRepo
	Retention  int
}

// NewPersonalizationRetentionJob deletes customer submissions past the
// retention window.
func NewPersonalizationRetentionJob(params PersonalizationRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("storefront repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = personalizationRetentionDays
	}
	return &personalizationRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type personalizationRetentionJob struct {
	logg      *logger.Logger
	repo      personalizationRetentionRepo
	retention int
	now       func() time.Time
}

func (j *personalizationRetentionJob) Name() string { return "personalization-retention" }

func (j *personalizationRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeletePersonalizationsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("personalization retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "personalization retention complete")
	return nil
}
