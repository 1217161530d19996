package dto

import (
	"fmt"
	"strings"
	"time"

	"job-trail/internal/domain"
	"job-trail/internal/domain/interview"
	"job-trail/internal/usecase"

	"github.com/google/uuid"
)

type CreateInterviewRequest struct {
	InterviewType   string `json:"interview_type" validate:"required"`
	InterviewDate   string `json:"interview_date" validate:"required"`
	InterviewerName string `json:"interviewer_name" validate:"max=100"`
	Notes           string `json:"notes" validate:"max=2000"`
}

func (r CreateInterviewRequest) Validate() error {
	return validate.Struct(r)
}

func (r CreateInterviewRequest) ToInput() (usecase.CreateInterviewInput, error) {
	kind, err := interview.ParseType(r.InterviewType)
	if err != nil {
		return usecase.CreateInterviewInput{}, err
	}
	date, err := ParseDate("interview_date", r.InterviewDate)
	if err != nil {
		return usecase.CreateInterviewInput{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return usecase.CreateInterviewInput{
		Type:            kind,
		InterviewDate:   date,
		InterviewerName: strings.TrimSpace(r.InterviewerName),
		Notes:           r.Notes,
	}, nil
}

type UpdateInterviewRequest struct {
	InterviewType   *string `json:"interview_type"`
	InterviewDate   *string `json:"interview_date"`
	InterviewerName *string `json:"interviewer_name" validate:"omitempty,max=100"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
}

func (r UpdateInterviewRequest) Validate() error {
	return validate.Struct(r)
}

func (r UpdateInterviewRequest) ToPatch() (interview.Patch, error) {
	var patch interview.Patch
	if r.InterviewType != nil {
		kind, err := interview.ParseType(*r.InterviewType)
		if err != nil {
			return interview.Patch{}, err
		}
		patch.Type = &kind
	}
	date, err := parseOptionalDate("interview_date", r.InterviewDate)
	if err != nil {
		return interview.Patch{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	patch.InterviewDate = date
	patch.InterviewerName = r.InterviewerName
	patch.Notes = r.Notes
	return patch, nil
}

type InterviewResponse struct {
	ID               uuid.UUID `json:"id"`
	JobApplicationID uuid.UUID `json:"job_application_id"`
	InterviewType    string    `json:"interview_type"`
	InterviewDate    time.Time `json:"interview_date"`
	InterviewerName  string    `json:"interviewer_name"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewInterviewResponse(iv interview.Interview) InterviewResponse {
	return InterviewResponse{
		ID:               iv.ID,
		JobApplicationID: iv.JobApplicationID,
		InterviewType:    string(iv.Type),
		InterviewDate:    iv.InterviewDate,
		InterviewerName:  iv.InterviewerName,
		Notes:            iv.Notes,
		CreatedAt:        iv.CreatedAt,
		UpdatedAt:        iv.UpdatedAt,
	}
}

func NewInterviewResponses(items []interview.Interview) []InterviewResponse {
	out := make([]InterviewResponse, 0, len(items))
	for _, iv := range items {
		out = append(out, NewInterviewResponse(iv))
	}
	return out
}
