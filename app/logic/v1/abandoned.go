package v1

import (
	"context"
	"log/slog"
	"time"

	"github.com/1abhi6/BharatLens/app/core"
	"github.com/1abhi6/BharatLens/pkg/ai"
	"github.com/1abhi6/BharatLens/pkg/types"
	"github.com/1abhi6/BharatLens/pkg/utils"
)

const (
	ABANDONED_TURN_REPLY     = ai.ERROR_PREFIX + "turn abandoned"
	ABANDONED_SWEEP_BATCH    = 100
	DEFAULT_ABANDON_AFTER    = 10 * time.Minute
	ABANDONED_SOURCE_SWEEPER = "sweeper"
)

// AbandonedTurnSweeper closes turns whose user message never got an answer,
// usually because the process died between the two writes.
type AbandonedTurnSweeper struct {
	stores  Stores
	metrics *core.Metrics
	after   time.Duration
}

func NewAbandonedTurnSweeper(stores Stores, metrics *core.Metrics, after time.Duration) *AbandonedTurnSweeper {
	if after <= 0 {
		after = DEFAULT_ABANDON_AFTER
	}
	return &AbandonedTurnSweeper{
		stores:  stores,
		metrics: metrics,
		after:   after,
	}
}

// Sweep answers every user message older than the abandon threshold that has
// no later assistant message, and returns how many were closed.
func (s *AbandonedTurnSweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	before := now.Add(-s.after).Unix()
	closed := 0
	for {
		pending, err := s.stores.ChatMessageStore().ListUnanswered(ctx, before, ABANDONED_SWEEP_BATCH)
		if err != nil {
			return closed, err
		}

		// one reply per session closes every pending message in it
		seen := make(map[string]bool)
		for _, msg := range pending {
			if seen[msg.SessionID] {
				continue
			}
			seen[msg.SessionID] = true

			if err = s.stores.ChatMessageStore().Create(ctx, &types.ChatMessage{
				ID:        utils.GenUniqIDStr(),
				SessionID: msg.SessionID,
				Role:      types.ROLE_ASSISTANT,
				Content:   ABANDONED_TURN_REPLY,
				Metadata: types.Metadata{
					types.META_ABANDONED: true,
					types.META_DEGRADED:  true,
					"reply_to":           msg.ID,
				},
			}); err != nil {
				return closed, err
			}
			closed++
			s.metrics.AbandonedTurnInc(ABANDONED_SOURCE_SWEEPER)
			slog.Warn("closed abandoned turn", slog.String("session_id", msg.SessionID), slog.String("message_id", msg.ID))
		}

		if len(pending) < ABANDONED_SWEEP_BATCH {
			return closed, nil
		}
	}
}
