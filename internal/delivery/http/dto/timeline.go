package dto

import (
	"fmt"
	"time"

	"job-trail/internal/domain"
	"job-trail/internal/domain/timeline"
	"job-trail/internal/usecase"

	"github.com/google/uuid"
)

type CreateTimelineRequest struct {
	EventType string `json:"event_type" validate:"required"`
	EventDate string `json:"event_date" validate:"required"`
	Notes     string `json:"notes" validate:"max=2000"`
}

func (r CreateTimelineRequest) Validate() error {
	return validate.Struct(r)
}

func (r CreateTimelineRequest) ToInput() (usecase.CreateTimelineInput, error) {
	kind, err := timeline.ParseEventKind(r.EventType)
	if err != nil {
		return usecase.CreateTimelineInput{}, err
	}
	date, err := ParseDate("event_date", r.EventDate)
	if err != nil {
		return usecase.CreateTimelineInput{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return usecase.CreateTimelineInput{Kind: kind, EventDate: date, Notes: r.Notes}, nil
}

type UpdateTimelineRequest struct {
	EventType *string `json:"event_type" validate:"omitempty,min=1"`
	EventDate *string `json:"event_date"`
	Notes     *string `json:"notes" validate:"omitempty,max=2000"`
}

func (r UpdateTimelineRequest) Validate() error {
	return validate.Struct(r)
}

func (r UpdateTimelineRequest) ToPatch() (timeline.Patch, error) {
	var patch timeline.Patch
	if r.EventType != nil {
		kind, err := timeline.ParseEventKind(*r.EventType)
		if err != nil {
			return timeline.Patch{}, err
		}
		patch.Kind = &kind
	}
	date, err := parseOptionalDate("event_date", r.EventDate)
	if err != nil {
		return timeline.Patch{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	patch.EventDate = date
	patch.Notes = r.Notes
	return patch, nil
}

// UpdateTimelineNoteRequest allows an empty note, which clears it.
type UpdateTimelineNoteRequest struct {
	Notes *string `json:"notes" validate:"required,max=2000"`
}

func (r UpdateTimelineNoteRequest) Validate() error {
	return validate.Struct(r)
}

type TimelineResponse struct {
	ID               uuid.UUID `json:"id"`
	JobApplicationID uuid.UUID `json:"job_application_id"`
	EventType        string    `json:"event_type"`
	EventDate        time.Time `json:"event_date"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewTimelineResponse(e timeline.Event) TimelineResponse {
	return TimelineResponse{
		ID:               e.ID,
		JobApplicationID: e.JobApplicationID,
		EventType:        e.Kind.String(),
		EventDate:        e.EventDate,
		Notes:            e.Notes,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func NewTimelineResponses(events []timeline.Event) []TimelineResponse {
	out := make([]TimelineResponse, 0, len(events))
	for _, e := range events {
		out = append(out, NewTimelineResponse(e))
	}
	return out
}
