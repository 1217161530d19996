package interview

import (
	"fmt"
	"strings"
	"time"

	"job-trail/internal/domain"

	"github.com/google/uuid"
)

type Type string

const (
	TypePhone  Type = "phone"
	TypeVideo  Type = "video"
	TypeOnsite Type = "onsite"
)

func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case TypePhone, TypeVideo, TypeOnsite:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown interview type %q", domain.ErrValidation, raw)
	}
}

type Interview struct {
	ID               uuid.UUID
	JobApplicationID uuid.UUID
	Type             Type
	InterviewDate    time.Time
	InterviewerName  string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

type NewInterview struct {
	JobApplicationID uuid.UUID
	Type             Type
	InterviewDate    time.Time
	InterviewerName  string
	Notes            string
}

type Patch struct {
	Type            *Type
	InterviewDate   *time.Time
	InterviewerName *string
	Notes           *string
}

func (p Patch) Empty() bool {
	return p.Type == nil && p.InterviewDate == nil && p.InterviewerName == nil && p.Notes == nil
}
