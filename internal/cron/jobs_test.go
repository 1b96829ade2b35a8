package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/greenloop-app/greenloop-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

type fakePickupExpirer struct {
	lastTTL   time.Duration
	lastLimit int
	expired   int
	err       error
	called    int
}

func (f *fakePickupExpirer) ExpirePending(_ context.Context, olderThan time.Duration, limit int) (int, error) {
	f.called++
	f.lastTTL = olderThan
	f.lastLimit = limit
	if f.err != nil {
		return 0, f.err
	}
	return f.expired, nil
}

func TestPickupExpiryJobSweeps(t *testing.T) {
	expirer := &fakePickupExpirer{expired: 3}
	job, err := NewPickupExpiryJob(PickupExpiryJobParams{
		Logger:  testLogger(),
		Pickups: expirer,
		TTL:     96 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewPickupExpiryJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if expirer.called != 1 || expirer.lastTTL != 96*time.Hour {
		t.Fatalf("unexpected expirer calls %+v", expirer)
	}
	if expirer.lastLimit != defaultExpiryBatchSize {
		t.Fatalf("expected default batch size, got %d", expirer.lastLimit)
	}
}

func TestPickupExpiryJobPropagatesErrors(t *testing.T) {
	job, err := NewPickupExpiryJob(PickupExpiryJobParams{
		Logger:  testLogger(),
		Pickups: &fakePickupExpirer{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewPickupExpiryJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeCleanupRepo struct {
	lastCutoff time.Time
	deleted    int64
	err        error
	called     int
}

func (f *fakeCleanupRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func TestNotificationCleanupJobUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	repo := &fakeCleanupRepo{deleted: 42}
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     testLogger(),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	job := jobIface.(*notificationCleanupJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expected := now.Add(-defaultReadRetention)
	if !repo.lastCutoff.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected one delete, got %d", repo.called)
	}
}

type fakeRetentionRepo struct {
	lastCutoff time.Time
	deleted    int64
	err        error
}

func (f *fakeRetentionRepo) DeletePublishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func TestOutboxRetentionJobUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	repo := &fakeRetentionRepo{deleted: 7}
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     testLogger(),
		Repository: repo,
		Retention:  24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job := jobIface.(*outboxRetentionJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !repo.lastCutoff.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("unexpected cutoff %s", repo.lastCutoff)
	}
}

func TestOutboxRetentionJobPropagatesErrors(t *testing.T) {
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     testLogger(),
		Repository: &fakeRetentionRepo{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
