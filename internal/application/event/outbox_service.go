// Package event exposes the state of the transactional outbox to operators.
package event

import (
	"context"
	"fmt"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

// OutboxCounter counts outbox entries per delivery status
type OutboxCounter interface {
	CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error)
}

// OutboxService reports relay backlog. The outbox spans every organization,
// so only super admins may read it.
type OutboxService struct {
	counter OutboxCounter
	guard   *tenancy.Guard
	logger  *zap.Logger
}

// NewOutboxService creates a new outbox service
func NewOutboxService(counter OutboxCounter, guard *tenancy.Guard, logger *zap.Logger) *OutboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxService{
		counter: counter,
		guard:   guard,
		logger:  logger,
	}
}

// OutboxStatsDTO represents outbox statistics
type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// GetStats returns outbox statistics
func (s *OutboxService) GetStats(ctx context.Context, p tenancy.Principal) (*OutboxStatsDTO, error) {
	if err := s.guard.RequireRole(p, tenancy.RoleSuperAdmin); err != nil {
		return nil, err
	}
	counts, err := s.counter.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to get outbox stats", zap.Error(err))
		return nil, fmt.Errorf("count outbox entries: %w", err)
	}

	var total int64
	for _, count := range counts {
		total += count
	}
	return &OutboxStatsDTO{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}
