package process

import (
	"context"
	"log/slog"
	"time"

	v1 "github.com/1abhi6/BharatLens/app/logic/v1"
	"github.com/1abhi6/BharatLens/pkg/register"
	"github.com/1abhi6/BharatLens/pkg/safe"
)

const ABANDONED_TURN_SCHEDULE = "@every 1m"

func init() {
	register.RegisterFunc[*Process](ProcessKey{}, func(p *Process) {
		sweeper := v1.NewAbandonedTurnSweeper(p.Core().Store(), p.Core().Metrics(), p.Core().Cfg().Chat.AbandonAfter.Duration)
		if _, err := p.Cron().AddFunc(ABANDONED_TURN_SCHEDULE, func() {
			safe.RunWithLog(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
				defer cancel()

				closed, err := sweeper.Sweep(ctx, time.Now())
				if err != nil {
					slog.Error("failed to sweep abandoned turns", slog.String("error", err.Error()), slog.Int("closed", closed))
					return
				}
				if closed > 0 {
					slog.Info("abandoned turns closed", slog.Int("count", closed))
				}
			}, "process.abandoned_turns")
		}); err != nil {
			panic(err)
		}
	})
}
