package application

import (
	"time"

	"job-trail/internal/domain/timeline"

	"github.com/google/uuid"
)

// JobApplication is a tracked application. Status is written only by the
// timeline projection and is nil when the application has no live event.
type JobApplication struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	JobTitle        string
	CompanyName     string
	Location        string
	ApplicationDate time.Time
	SourceURL       *string
	Status          *timeline.Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

type NewJobApplication struct {
	UserID          uuid.UUID
	JobTitle        string
	CompanyName     string
	Location        string
	ApplicationDate time.Time
	SourceURL       *string
}

// Patch lists the descriptive fields an update may change.
type Patch struct {
	JobTitle        *string
	CompanyName     *string
	Location        *string
	ApplicationDate *time.Time
}

func (p Patch) Empty() bool {
	return p.JobTitle == nil && p.CompanyName == nil && p.Location == nil && p.ApplicationDate == nil
}

type ListFilter struct {
	UserID *uuid.UUID
	Search string
	Status *timeline.Status
	Limit  int
	Offset int
}
