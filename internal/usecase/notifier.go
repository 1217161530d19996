package usecase

import (
	"context"
	"time"

	"job-trail/internal/domain/timeline"

	"github.com/google/uuid"
)

// TimelineChange describes a committed change to an application's timeline.
// Status is nil when no live event remains.
type TimelineChange struct {
	UserID           uuid.UUID
	JobApplicationID uuid.UUID
	Status           *timeline.Status
	At               time.Time
}

// ChangeNotifier is told about changes after they commit. Delivery is best
// effort and must not block the caller.
type ChangeNotifier interface {
	TimelineChanged(ctx context.Context, change TimelineChange)
}

type NopNotifier struct{}

func (NopNotifier) TimelineChanged(context.Context, TimelineChange) {}
