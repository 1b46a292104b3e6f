package reflist

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tickerbot/internal/logger"
)

// Warmer refreshes reference lists on a cron schedule so that user requests
// rarely wait on a list download.
type Warmer struct {
	caches []*Cache
	cron   *cron.Cron
	log    *zap.SugaredLogger
}

func NewWarmer(log *zap.SugaredLogger, caches ...*Cache) *Warmer {
	if log == nil {
		log = logger.Nop()
	}
	return &Warmer{caches: caches, cron: cron.New(), log: log}
}

// Start schedules RunNow with a standard 5-field cron spec. An empty spec
// leaves the warmer idle.
func (w *Warmer) Start(schedule string) error {
	if schedule == "" {
		w.log.Infow("reference list warm refresh disabled")
		return nil
	}
	if _, err := w.cron.AddFunc(schedule, func() { w.RunNow(context.Background()) }); err != nil {
		return err
	}
	w.cron.Start()
	w.log.Infow("reference list warm refresh scheduled", "schedule", schedule)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
}

// RunNow refreshes every cache once. Failures are logged; each cache keeps
// serving its previous table.
func (w *Warmer) RunNow(ctx context.Context) {
	for _, c := range w.caches {
		if _, err := c.Refresh(ctx); err != nil {
			w.log.Warnw("warm refresh failed", "list", c.Name(), "err", err)
		}
	}
}
