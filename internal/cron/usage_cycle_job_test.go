package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fechouapp/fechou-backend/pkg/logger"
)

type stubResetter struct {
	reset int64
	err   error
	calls int
}

func (s *stubResetter) ResetExpiredCycles(ctx context.Context, now time.Time) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.reset, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestUsageCycleJobRuns(t *testing.T) {
	resetter := &stubResetter{reset: 3}
	job, err := NewUsageCycleJob(UsageCycleJobParams{
		Logger:       testLogger(),
		Entitlements: resetter,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Name() != "usage-cycle-reset" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resetter.calls != 1 {
		t.Fatalf("expected one reset call, got %d", resetter.calls)
	}
}

func TestUsageCycleJobPropagatesError(t *testing.T) {
	resetter := &stubResetter{err: errors.New("db down")}
	job, err := NewUsageCycleJob(UsageCycleJobParams{
		Logger:       testLogger(),
		Entitlements: resetter,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected reset error to propagate")
	}
}

type stubLock struct {
	acquired bool
	releases int
}

func (s *stubLock) Acquire(ctx context.Context) (bool, error) { return s.acquired, nil }
func (s *stubLock) Release(ctx context.Context) error {
	s.releases++
	return nil
}

func TestServiceSkipsWhenLockHeld(t *testing.T) {
	resetter := &stubResetter{}
	job, _ := NewUsageCycleJob(UsageCycleJobParams{Logger: testLogger(), Entitlements: resetter})

	lock := &stubLock{acquired: false}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resetter.calls != 0 {
		t.Fatal("expected no job run when lock is held elsewhere")
	}
	if lock.releases != 0 {
		t.Fatal("expected no release when lock was not acquired")
	}
}

func TestServiceRunsJobsWithLock(t *testing.T) {
	resetter := &stubResetter{}
	job, _ := NewUsageCycleJob(UsageCycleJobParams{Logger: testLogger(), Entitlements: resetter})

	lock := &stubLock{acquired: true}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resetter.calls != 1 {
		t.Fatalf("expected one job run, got %d", resetter.calls)
	}
	if lock.releases != 1 {
		t.Fatalf("expected one lock release, got %d", lock.releases)
	}
}
