package usecase

import (
	"context"
	"fmt"
	"time"

	"job-trail/internal/domain"
	"job-trail/internal/domain/timeline"
	"job-trail/internal/domain/user"
	"job-trail/internal/observability"
	"job-trail/internal/pkg/logger"
	"job-trail/internal/repository"

	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var ErrTimelineEmpty = fmt.Errorf("timeline has no live events: %w", domain.ErrNotFound)

type CreateTimelineInput struct {
	Kind      timeline.EventKind
	EventDate time.Time
	Notes     string
}

func (in CreateTimelineInput) validate() error {
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: event type is required", domain.ErrValidation)
	}
	if in.EventDate.IsZero() {
		return fmt.Errorf("%w: event date is required", domain.ErrValidation)
	}
	return nil
}

type TimelineUsecase interface {
	// Authorize reports whether p may act on appID's timeline.
	Authorize(ctx context.Context, p user.Principal, appID uuid.UUID) error
	List(ctx context.Context, p user.Principal, appID uuid.UUID) ([]timeline.Event, error)
	Get(ctx context.Context, p user.Principal, appID, eventID uuid.UUID) (timeline.Event, error)
	Create(ctx context.Context, p user.Principal, appID uuid.UUID, in CreateTimelineInput) (timeline.Event, error)
	Update(ctx context.Context, p user.Principal, appID, eventID uuid.UUID, patch timeline.Patch) (timeline.Event, error)
	UpdateNote(ctx context.Context, p user.Principal, appID, eventID uuid.UUID, note string) (timeline.Event, error)
	Delete(ctx context.Context, p user.Principal, appID, eventID uuid.UUID) (timeline.Event, error)
	// Undo hard-deletes the most recently created live event and returns it.
	Undo(ctx context.Context, p user.Principal, appID uuid.UUID) (timeline.Event, error)
	// Reset hard-deletes every live event but the most recently created one
	// and returns the survivor.
	Reset(ctx context.Context, p user.Principal, appID uuid.UUID) (timeline.Event, error)
}

// TimelineEngine is the only code path that writes a job application's
// status. Every mutation locks the application row, changes the timeline and
// re-projects the status in one transaction. Ownership is settled before any
// input is validated.
type TimelineEngine struct {
	uow      repository.UnitOfWork
	notifier ChangeNotifier
	tracer   *observability.Tracer
	logger   *charmLog.Logger
	now      func() time.Time
}

func NewTimelineEngine(uow repository.UnitOfWork, notifier ChangeNotifier, tracer *observability.Tracer, log *charmLog.Logger) *TimelineEngine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if tracer == nil {
		tracer = observability.NewTracer(nil)
	}
	return &TimelineEngine{
		uow:      uow,
		notifier: notifier,
		tracer:   tracer,
		logger:   logger.OrDiscard(log).WithPrefix("timeline"),
		now:      time.Now,
	}
}

func (e *TimelineEngine) Authorize(ctx context.Context, p user.Principal, appID uuid.UUID) error {
	_, err := e.uow.Stores().JobApplications.GetOwned(ctx, appID, p.UserID)
	return err
}

func (e *TimelineEngine) List(ctx context.Context, p user.Principal, appID uuid.UUID) ([]timeline.Event, error) {
	ctx, span := e.tracer.StartTimeline(ctx, "list", appID)
	s := e.uow.Stores()
	if _, err := s.JobApplications.GetOwned(ctx, appID, p.UserID); err != nil {
		e.tracer.End(span, err)
		return nil, err
	}
	events, err := s.Timelines.ListLive(ctx, appID)
	e.tracer.End(span, err)
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}
	return events, nil
}

func (e *TimelineEngine) Get(ctx context.Context, p user.Principal, appID, eventID uuid.UUID) (timeline.Event, error) {
	ctx, span := e.tracer.StartTimeline(ctx, "get", appID)
	s := e.uow.Stores()
	if _, err := s.JobApplications.GetOwned(ctx, appID, p.UserID); err != nil {
		e.tracer.End(span, err)
		return timeline.Event{}, err
	}
	ev, err := s.Timelines.Get(ctx, appID, eventID)
	e.tracer.End(span, err)
	return ev, err
}

func (e *TimelineEngine) Create(ctx context.Context, p user.Principal, appID uuid.UUID, in CreateTimelineInput) (timeline.Event, error) {
	return e.mutate(ctx, "create", p, appID, func(ctx context.Context, s repository.Stores) (timeline.Event, bool, error) {
		if err := in.validate(); err != nil {
			return timeline.Event{}, false, err
		}
		ev, err := s.Timelines.Append(ctx, timeline.NewEvent{
			JobApplicationID: appID,
			Kind:             in.Kind,
			EventDate:        in.EventDate,
			Notes:            in.Notes,
		})
		return ev, true, err
	})
}

func (e *TimelineEngine) Update(ctx context.Context, p user.Principal, appID, eventID uuid.UUID, patch timeline.Patch) (timeline.Event, error) {
	return e.mutate(ctx, "update", p, appID, func(ctx context.Context, s repository.Stores) (timeline.Event, bool, error) {
		if err := validatePatch(patch); err != nil {
			return timeline.Event{}, false, err
		}
		current, err := s.Timelines.Get(ctx, appID, eventID)
		if err != nil {
			return timeline.Event{}, false, err
		}
		updated, err := s.Timelines.UpdateFields(ctx, appID, eventID, patch)
		return updated, patch.AffectsStatus(current), err
	})
}

func validatePatch(patch timeline.Patch) error {
	if patch.Kind != nil && !patch.Kind.Valid() {
		return fmt.Errorf("%w: invalid event type", domain.ErrValidation)
	}
	if patch.EventDate != nil && patch.EventDate.IsZero() {
		return fmt.Errorf("%w: event date must not be empty", domain.ErrValidation)
	}
	return nil
}

func (e *TimelineEngine) UpdateNote(ctx context.Context, p user.Principal, appID, eventID uuid.UUID, note string) (timeline.Event, error) {
	return e.mutate(ctx, "update_note", p, appID, func(ctx context.Context, s repository.Stores) (timeline.Event, bool, error) {
		ev, err := s.Timelines.UpdateFields(ctx, appID, eventID, timeline.Patch{Notes: &note})
		return ev, false, err
	})
}

func (e *TimelineEngine) Delete(ctx context.Context, p user.Principal, appID, eventID uuid.UUID) (timeline.Event, error) {
	return e.mutate(ctx, "delete", p, appID, func(ctx context.Context, s repository.Stores) (timeline.Event, bool, error) {
		ev, err := s.Timelines.SoftDelete(ctx, appID, eventID)
		return ev, true, err
	})
}

func (e *TimelineEngine) Undo(ctx context.Context, p user.Principal, appID uuid.UUID) (timeline.Event, error) {
	return e.mutate(ctx, "undo", p, appID, func(ctx context.Context, s repository.Stores) (timeline.Event, bool, error) {
		live, err := s.Timelines.ListLiveByCreation(ctx, appID)
		if err != nil {
			return timeline.Event{}, false, err
		}
		if len(live) == 0 {
			return timeline.Event{}, false, ErrTimelineEmpty
		}
		last := live[0]
		if err := s.Timelines.HardDelete(ctx, appID, last.ID); err != nil {
			return timeline.Event{}, false, err
		}
		return last, true, nil
	})
}

func (e *TimelineEngine) Reset(ctx context.Context, p user.Principal, appID uuid.UUID) (timeline.Event, error) {
	return e.mutate(ctx, "reset", p, appID, func(ctx context.Context, s repository.Stores) (timeline.Event, bool, error) {
		live, err := s.Timelines.ListLiveByCreation(ctx, appID)
		if err != nil {
			return timeline.Event{}, false, err
		}
		if len(live) == 0 {
			return timeline.Event{}, false, ErrTimelineEmpty
		}
		keep := live[0]
		if len(live) == 1 {
			return keep, false, nil
		}
		drop := make([]uuid.UUID, 0, len(live)-1)
		for _, ev := range live[1:] {
			drop = append(drop, ev.ID)
		}
		if err := s.Timelines.HardDelete(ctx, appID, drop...); err != nil {
			return timeline.Event{}, false, err
		}
		return keep, true, nil
	})
}

type timelineMutation func(ctx context.Context, s repository.Stores) (ev timeline.Event, reproject bool, err error)

func (e *TimelineEngine) mutate(ctx context.Context, op string, p user.Principal, appID uuid.UUID, fn timelineMutation) (timeline.Event, error) {
	ctx, span := e.tracer.StartTimeline(ctx, op, appID)

	var (
		ev        timeline.Event
		reproject bool
		status    *timeline.Status
	)
	err := e.uow.WithinTx(ctx, func(ctx context.Context, s repository.Stores) error {
		if _, err := s.JobApplications.LockOwned(ctx, appID, p.UserID); err != nil {
			return err
		}
		var err error
		ev, reproject, err = fn(ctx, s)
		if err != nil {
			return err
		}
		if !reproject {
			return nil
		}
		status, err = reprojectStatus(ctx, s, appID)
		return err
	})
	e.tracer.End(span, err)
	if err != nil {
		e.logger.Debug("timeline mutation failed", "op", op, "job_application_id", appID, "err", err)
		return timeline.Event{}, err
	}

	if reproject {
		e.logger.Debug("status projected", "op", op, "job_application_id", appID, "status", statusLabel(status))
		e.notifier.TimelineChanged(ctx, TimelineChange{
			UserID:           p.UserID,
			JobApplicationID: appID,
			Status:           status,
			At:               e.now().UTC(),
		})
	}
	return ev, nil
}

// reprojectStatus recomputes the status from the live events and stores it.
// It must run inside the transaction holding the application row lock.
func reprojectStatus(ctx context.Context, s repository.Stores, appID uuid.UUID) (*timeline.Status, error) {
	live, err := s.Timelines.ListLive(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("list live events: %w", err)
	}
	status := timeline.Project(live)
	if err := s.JobApplications.SetStatus(ctx, appID, status); err != nil {
		return nil, fmt.Errorf("store status: %w", err)
	}
	return status, nil
}

// appendAndProject appends the first event of a freshly created application
// inside the creating transaction.
func appendAndProject(ctx context.Context, s repository.Stores, ev timeline.NewEvent) (timeline.Event, *timeline.Status, error) {
	created, err := s.Timelines.Append(ctx, ev)
	if err != nil {
		return timeline.Event{}, nil, fmt.Errorf("append initial event: %w", err)
	}
	status, err := reprojectStatus(ctx, s, ev.JobApplicationID)
	if err != nil {
		return timeline.Event{}, nil, err
	}
	return created, status, nil
}

func statusLabel(s *timeline.Status) string {
	if s == nil {
		return "none"
	}
	return string(*s)
}
