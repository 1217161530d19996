// Package timeline holds the job application lifecycle vocabulary: event
// kinds, the coarse statuses they imply, and the projection that derives an
// application's current status from its live events.
package timeline

import (
	"fmt"
	"strings"

	"job-trail/internal/domain"
)

// EventKind is a lifecycle milestone recorded on a job application timeline.
type EventKind uint8

const (
	KindSaved EventKind = iota
	KindApplied
	KindInterviewScheduled
	KindInterviewCompleted
	KindOfferReceived
	KindOfferAccepted
	KindOfferDeclined
	KindRejected
	KindWithdrawn

	kindCount
)

// Status is the coarse state of a job application.
type Status string

const (
	StatusSaved       Status = "saved"
	StatusApplied     Status = "applied"
	StatusInterviewed Status = "interviewed"
	StatusOffered     Status = "offered"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
	StatusWithdrawn   Status = "withdrawn"
)

// The tables below are sized by kindCount so an index outside the taxonomy
// fails to compile. TestTaxonomyIsTotal guards against a missing entry.
var kindNames = [kindCount]string{
	KindSaved:              "SAVED",
	KindApplied:            "APPLIED",
	KindInterviewScheduled: "INTERVIEW_SCHEDULED",
	KindInterviewCompleted: "INTERVIEW_COMPLETED",
	KindOfferReceived:      "OFFER_RECEIVED",
	KindOfferAccepted:      "OFFER_ACCEPTED",
	KindOfferDeclined:      "OFFER_DECLINED",
	KindRejected:           "REJECTED",
	KindWithdrawn:          "WITHDRAWN",
}

var statusByKind = [kindCount]Status{
	KindSaved:              StatusSaved,
	KindApplied:            StatusApplied,
	KindInterviewScheduled: StatusInterviewed,
	KindInterviewCompleted: StatusInterviewed,
	KindOfferReceived:      StatusOffered,
	KindOfferAccepted:      StatusAccepted,
	KindOfferDeclined:      StatusRejected,
	KindRejected:           StatusRejected,
	KindWithdrawn:          StatusWithdrawn,
}

// AllKinds returns every event kind in declaration order.
func AllKinds() []EventKind {
	out := make([]EventKind, 0, kindCount)
	for k := EventKind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// StatusFor maps an event kind to the status it implies. It panics on a value
// outside the taxonomy, which can only come from an unchecked conversion.
func StatusFor(k EventKind) Status {
	if !k.Valid() {
		panic(fmt.Sprintf("timeline: event kind %d outside taxonomy", k))
	}
	return statusByKind[k]
}

// EventForStatus is the inverse used when an application is created with an
// explicit starting status. Statuses reached by several kinds resolve to the
// completed milestone (interviewed -> INTERVIEW_COMPLETED).
func EventForStatus(s Status) (EventKind, error) {
	switch s {
	case StatusSaved:
		return KindSaved, nil
	case StatusApplied:
		return KindApplied, nil
	case StatusInterviewed:
		return KindInterviewCompleted, nil
	case StatusOffered:
		return KindOfferReceived, nil
	case StatusAccepted:
		return KindOfferAccepted, nil
	case StatusRejected:
		return KindRejected, nil
	case StatusWithdrawn:
		return KindWithdrawn, nil
	default:
		return 0, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, s)
	}
}

func (k EventKind) Valid() bool {
	return k < kindCount
}

func (k EventKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
	return kindNames[k]
}

// ParseEventKind accepts the wire name of a kind, case-insensitively.
func ParseEventKind(raw string) (EventKind, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for k := EventKind(0); k < kindCount; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown event type %q", domain.ErrValidation, raw)
}

func (k EventKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("timeline: invalid event kind %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *EventKind) UnmarshalText(b []byte) error {
	parsed, err := ParseEventKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseStatus accepts a status name, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusSaved, StatusApplied, StatusInterviewed, StatusOffered,
		StatusAccepted, StatusRejected, StatusWithdrawn:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", domain.ErrValidation, raw)
	}
}
