package worker

import (
	"context"
	"time"

	"tiendamontana/internal/middleware"
	"tiendamontana/internal/usecase"

	"go.uber.org/zap"
)

// Sweeper は期限切れの未払い注文を定期的にキャンセルする常駐ワーカー。
type Sweeper struct {
	uc       *usecase.AdminOrderUsecase
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(uc *usecase.AdminOrderUsecase, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		uc:       uc,
		interval: interval,
		logger:   logger,
	}
}

// Run はctxが終わるまで回り続ける。goroutineで呼ぶ。
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			result, err := s.uc.Sweep(ctx)
			if err != nil {
				s.logger.Error("sweep failed", zap.Error(err))
				continue
			}
			for i := 0; i < result.Canceled; i++ {
				middleware.RecordOrderCanceled("sweeper")
			}
			if result.Attempted > 0 {
				s.logger.Info("sweep finished",
					zap.Int("attempted", result.Attempted),
					zap.Int("canceled", result.Canceled),
					zap.Int("skipped", result.Skipped),
					zap.Int("failed", result.Failed),
				)
			}
		}
	}
}
