package ws

import (
	"context"
	"encoding/json"
	"time"

	"job-trail/internal/usecase"
)

const EventTimelineChanged = "timeline_changed"

type TimelineChangedEvent struct {
	Type             string  `json:"type"`
	JobApplicationID string  `json:"job_application_id"`
	Status           *string `json:"status"`
	Timestamp        string  `json:"timestamp"`
}

// Notifier pushes committed timeline changes to the owner's sockets.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) TimelineChanged(_ context.Context, change usecase.TimelineChange) {
	if n == nil || n.hub == nil {
		return
	}
	evt := TimelineChangedEvent{
		Type:             EventTimelineChanged,
		JobApplicationID: change.JobApplicationID.String(),
		Timestamp:        change.At.UTC().Format(time.RFC3339),
	}
	if change.Status != nil {
		s := string(*change.Status)
		evt.Status = &s
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.SendToUser(change.UserID, b)
}

var _ usecase.ChangeNotifier = (*Notifier)(nil)
