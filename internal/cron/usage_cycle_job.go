package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/fechouapp/fechou-backend/pkg/logger"
)

type usageCycleResetter interface {
	ResetExpiredCycles(ctx context.Context, now time.Time) (int64, error)
}

// UsageCycleJobParams configure the usage cycle reset job.
type UsageCycleJobParams struct {
	Logger       *logger.Logger
	Entitlements usageCycleResetter
}

// NewUsageCycleJob builds the job that starts a fresh usage cycle for every
// subscription whose window elapsed.
func NewUsageCycleJob(params UsageCycleJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Entitlements == nil {
		return nil, fmt.Errorf("entitlement service required")
	}
	return &usageCycleJob{
		logg:         params.Logger,
		entitlements: params.Entitlements,
		now:          time.Now,
	}, nil
}

type usageCycleJob struct {
	logg         *logger.Logger
	entitlements usageCycleResetter
	now          func() time.Time
}

func (j *usageCycleJob) Name() string { return "usage-cycle-reset" }

func (j *usageCycleJob) Run(ctx context.Context) error {
	reset, err := j.entitlements.ResetExpiredCycles(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("usage cycle reset: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "subscriptions_reset", reset)
	j.logg.Info(logCtx, "usage cycle reset complete")
	return nil
}
