package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/craftlane/personalizer-backend/pkg/db/models"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/google/uuid"
)

type fakeOptionSetRepo struct {
	orphans   []models.OptionSet
	deleted   []uuid.UUID
	deleteErr map[uuid.UUID]error
	listErr   error
}

func (f *fakeOptionSetRepo) ListOrphanedOptionSets(context.Context, int) ([]models.OptionSet, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.orphans, nil
}

func (f *fakeOptionSetRepo) DeleteOptionSet(_ context.Context, id uuid.UUID) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newOptionSetJob(t *testing.T, repo *fakeOptionSetRepo) *optionSetCleanupJob {
	t.Helper()
	jobIface, err := NewOptionSetCleanupJob(OptionSetCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewOptionSetCleanupJob: %v", err)
	}
	job, ok := jobIface.(*optionSetCleanupJob)
	if !ok {
		t.Fatalf("expected optionSetCleanupJob, got %T", jobIface)
	}
	return job
}

func TestOptionSetCleanupDeletesOldOrphansOnly(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	oldOrphan := models.OptionSet{ID: uuid.New(), UpdatedAt: now.AddDate(0, 0, -10)}
	freshOrphan := models.OptionSet{ID: uuid.New(), UpdatedAt: now.AddDate(0, 0, -1)}

	repo := &fakeOptionSetRepo{orphans: []models.OptionSet{oldOrphan, freshOrphan}}
	job := newOptionSetJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != oldOrphan.ID {
		t.Fatalf("expected only the old orphan deleted, got %v", repo.deleted)
	}
}

func TestOptionSetCleanupAggregatesDeleteFailures(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	broken := models.OptionSet{ID: uuid.New(), UpdatedAt: now.AddDate(0, 0, -30)}
	healthy := models.OptionSet{ID: uuid.New(), UpdatedAt: now.AddDate(0, 0, -30)}

	repo := &fakeOptionSetRepo{
		orphans:   []models.OptionSet{broken, healthy},
		deleteErr: map[uuid.UUID]error{broken.ID: errors.New("boom")},
	}
	job := newOptionSetJob(t, repo)
	job.now = func() time.Time { return now }

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	// The healthy orphan is still deleted despite the earlier failure.
	if len(repo.deleted) != 1 || repo.deleted[0] != healthy.ID {
		t.Fatalf("expected healthy orphan deleted, got %v", repo.deleted)
	}
}

func TestOptionSetCleanupPropagatesListErrors(t *testing.T) {
	repo := &fakeOptionSetRepo{listErr: errors.New("boom")}
	job := newOptionSetJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakePersonalizationRepo struct {
	lastCutoff  time.Time
	deletedRows int64
	err         error
	called      int
}

func (f *fakePersonalizationRepo) DeletePersonalizationsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deletedRows, nil
}

func newRetentionJob(t *testing.T, repo *fakePersonalizationRepo) *personalizationRetentionJob {
	t.Helper()
	jobIface, err := NewPersonalizationRetentionJob(PersonalizationRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewPersonalizationRetentionJob: %v", err)
	}
	job, ok := jobIface.(*personalizationRetentionJob)
	if !ok {
		t.Fatalf("expected personalizationRetentionJob, got %T", jobIface)
	}
	return job
}

func TestPersonalizationRetentionUsesConfiguredCutoff(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	repo := &fakePersonalizationRepo{deletedRows: 7}
	job := newRetentionJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().Add(-personalizationRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestPersonalizationRetentionPropagatesErrors(t *testing.T) {
	repo := &fakePersonalizationRepo{err: errors.New("boom")}
	job := newRetentionJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
