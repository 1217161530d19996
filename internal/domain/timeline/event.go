package timeline

import (
	"time"

	"github.com/google/uuid"
)

// Event is one entry on a job application timeline. Seq is a store-assigned
// monotonic counter and is the authority on creation order.
type Event struct {
	ID               uuid.UUID
	JobApplicationID uuid.UUID
	Kind             EventKind
	EventDate        time.Time
	Notes            string
	Seq              int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

func (e Event) Live() bool {
	return e.DeletedAt == nil
}

// NewEvent is the input for appending an event.
type NewEvent struct {
	JobApplicationID uuid.UUID
	Kind             EventKind
	EventDate        time.Time
	Notes            string
}

// Patch lists the fields a timeline update may change. Nil fields are left
// untouched.
type Patch struct {
	Kind      *EventKind
	EventDate *time.Time
	Notes     *string
}

func (p Patch) Empty() bool {
	return p.Kind == nil && p.EventDate == nil && p.Notes == nil
}

// AffectsStatus reports whether applying p to e could change the projection.
func (p Patch) AffectsStatus(e Event) bool {
	if p.Kind != nil && *p.Kind != e.Kind {
		return true
	}
	if p.EventDate != nil && !p.EventDate.Equal(e.EventDate) {
		return true
	}
	return false
}

// Apply returns e with the patch fields assigned.
func (p Patch) Apply(e Event) Event {
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.EventDate != nil {
		e.EventDate = *p.EventDate
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	return e
}
