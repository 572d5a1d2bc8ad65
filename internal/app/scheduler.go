package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RecurringGenerator нарезает слоты по еженедельным шаблонам
type RecurringGenerator interface {
	GenerateRecurringSlots(ctx context.Context, weeksAhead int) (int, error)
}

// Scheduler периодически продлевает расписание по шаблонам,
// чтобы слоты всегда были открыты на weeksAhead недель вперёд
type Scheduler struct {
	generator  RecurringGenerator
	interval   time.Duration
	weeksAhead int
	logger     *zap.Logger
}

// NewScheduler создаёт новый планировщик
func NewScheduler(generator RecurringGenerator, interval time.Duration, weeksAhead int, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		generator:  generator,
		interval:   interval,
		weeksAhead: weeksAhead,
		logger:     logger,
	}
}

// Run блокируется до отмены ctx. Первый прогон выполняется сразу при старте.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Starting recurring slot scheduler",
		zap.Duration("interval", s.interval),
		zap.Int("weeks_ahead", s.weeksAhead))

	s.generateSlots(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.generateSlots(ctx)
		case <-ctx.Done():
			s.logger.Info("Recurring slot scheduler stopped")
			return nil
		}
	}
}

func (s *Scheduler) generateSlots(ctx context.Context) {
	created, err := s.generator.GenerateRecurringSlots(ctx, s.weeksAhead)
	if err != nil {
		s.logger.Error("Failed to generate recurring slots", zap.Error(err))
		return
	}

	s.logger.Info("Recurring slot generation completed", zap.Int("created", created))
}
