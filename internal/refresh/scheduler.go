// Package refresh drives periodic event snapshot refreshes on a cron
// schedule, replacing the original client's backend snapshot listener with an
// explicit pull.
package refresh

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/parishhub/eventcal/internal/eventstore"
)

const refreshTimeout = 30 * time.Second

// Scheduler periodically refreshes the event store. Refresh failures are
// logged, never fatal; the previous snapshot stays in place.
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Entry
}

func NewScheduler(spec string, events *eventstore.Store, log *logrus.Entry) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		res, err := events.Refresh(ctx)
		if err != nil {
			log.WithError(err).Error("scheduled refresh failed")
			return
		}
		log.WithFields(logrus.Fields{
			"loaded":  res.Loaded,
			"skipped": res.Skipped,
		}).Debug("scheduled refresh complete")
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
