package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleRefresh reloads the snapshot on a cron schedule such as
// "@every 5m", picking up writes made by other instances. The returned
// scheduler is already running; Stop it on shutdown.
func (s *Service) ScheduleRefresh(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			s.log.Warn("catalog refresh: scheduled run failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("catalog refresh schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
