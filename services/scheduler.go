// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// SweepAwaitingWinner logs every challenge whose end date has passed without
// a winner and updates the awaiting-winner gauge. It changes no state.
func (s *ChallengeService) SweepAwaitingWinner(ctx context.Context) (int, error) {
	due, err := s.AwaitingWinner(ctx)
	if err != nil {
		return 0, err
	}
	challengesAwaitingWinner.Set(float64(len(due)))
	for _, ch := range due {
		s.log.WithFields(logrus.Fields{
			"challenge_id": ch.ID,
			"creator":      ch.Creator,
			"end_date":     ch.EndDate,
			"prize_pool":   ch.PrizePool,
		}).Info("[Scheduler] challenge ended, awaiting winner")
	}
	return len(due), nil
}

// StartSweepScheduler runs SweepAwaitingWinner every interval. The caller
// owns the returned scheduler and must shut it down.
func (s *ChallengeService) StartSweepScheduler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := s.SweepAwaitingWinner(context.Background()); err != nil {
				s.log.WithError(err).Error("[Scheduler] sweep failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule sweep: %w", err)
	}

	sched.Start()
	return sched, nil
}
