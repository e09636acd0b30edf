package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "churchsite/internal/log"
)

// ScheduleReload reloads h on the given cron schedule (5-field syntax,
// evaluated in loc) until ctx is canceled. An empty spec is an error; the
// caller decides whether reloading is enabled at all.
func ScheduleReload(ctx context.Context, h *Holder, spec string, loc *time.Location) (*cron.Cron, error) {
	if spec == "" {
		return nil, errors.New("reload schedule is empty")
	}
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, func() {
		if err := h.Reload(); err == nil {
			appLog.Info("scheduled dataset reload completed", "years", len(h.Current().Years()))
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}

	c.Start()
	appLog.Info("dataset reload scheduled", "refresh", spec, "timezone", loc.String())

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Info("dataset reload scheduler stopped")
	}()

	return c, nil
}
