package dto

import (
	"fmt"
	"time"

	"job-trail/internal/domain"
	"job-trail/internal/domain/application"
	"job-trail/internal/domain/timeline"
	"job-trail/internal/usecase"

	"github.com/google/uuid"
)

type CreateJobApplicationRequest struct {
	JobTitle        string  `json:"job_title" validate:"required,max=100"`
	CompanyName     string  `json:"company_name" validate:"required,max=100"`
	Location        string  `json:"location" validate:"max=100"`
	ApplicationDate string  `json:"application_date" validate:"required"`
	Status          *string `json:"status" validate:"omitempty,oneof=saved applied interviewed offered accepted rejected withdrawn"`
	SourceURL       *string `json:"source_url" validate:"omitempty,url"`
}

func (r CreateJobApplicationRequest) Validate() error {
	return validate.Struct(r)
}

func (r CreateJobApplicationRequest) ToInput() (usecase.CreateJobApplicationInput, error) {
	applied, err := ParseDate("application_date", r.ApplicationDate)
	if err != nil {
		return usecase.CreateJobApplicationInput{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	status, err := parseOptionalStatus(r.Status)
	if err != nil {
		return usecase.CreateJobApplicationInput{}, err
	}
	return usecase.CreateJobApplicationInput{
		JobTitle:        r.JobTitle,
		CompanyName:     r.CompanyName,
		Location:        r.Location,
		ApplicationDate: applied,
		Status:          status,
		SourceURL:       r.SourceURL,
	}, nil
}

type ImportJobApplicationRequest struct {
	URL             string  `json:"url" validate:"required,url,max=2048"`
	ApplicationDate *string `json:"application_date"`
	Status          *string `json:"status" validate:"omitempty,oneof=saved applied interviewed offered accepted rejected withdrawn"`
}

func (r ImportJobApplicationRequest) Validate() error {
	return validate.Struct(r)
}

func (r ImportJobApplicationRequest) ToInput() (usecase.ImportJobApplicationInput, error) {
	applied, err := parseOptionalDate("application_date", r.ApplicationDate)
	if err != nil {
		return usecase.ImportJobApplicationInput{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	status, err := parseOptionalStatus(r.Status)
	if err != nil {
		return usecase.ImportJobApplicationInput{}, err
	}
	return usecase.ImportJobApplicationInput{URL: r.URL, ApplicationDate: applied, Status: status}, nil
}

// UpdateJobApplicationRequest has no status field: status only moves
// through the timeline.
type UpdateJobApplicationRequest struct {
	JobTitle        *string `json:"job_title" validate:"omitempty,max=100"`
	CompanyName     *string `json:"company_name" validate:"omitempty,max=100"`
	Location        *string `json:"location" validate:"omitempty,max=100"`
	ApplicationDate *string `json:"application_date"`
}

func (r UpdateJobApplicationRequest) Validate() error {
	return validate.Struct(r)
}

func (r UpdateJobApplicationRequest) ToPatch() (application.Patch, error) {
	applied, err := parseOptionalDate("application_date", r.ApplicationDate)
	if err != nil {
		return application.Patch{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return application.Patch{
		JobTitle:        r.JobTitle,
		CompanyName:     r.CompanyName,
		Location:        r.Location,
		ApplicationDate: applied,
	}, nil
}

type ListJobApplicationsQuery struct {
	Page     int    `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize int    `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
	Search   string `json:"search" query:"search" validate:"max=100"`
	Status   string `json:"status" query:"status" validate:"omitempty,oneof=saved applied interviewed offered accepted rejected withdrawn"`
}

func (q ListJobApplicationsQuery) Validate() error {
	return validate.Struct(q)
}

func (q ListJobApplicationsQuery) ToParams() (usecase.ListJobApplicationsParams, error) {
	params := usecase.ListJobApplicationsParams{Page: q.Page, PageSize: q.PageSize, Search: q.Search}
	if q.Status != "" {
		s, err := timeline.ParseStatus(q.Status)
		if err != nil {
			return usecase.ListJobApplicationsParams{}, err
		}
		params.Status = &s
	}
	return params, nil
}

type JobApplicationResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	JobTitle        string    `json:"job_title"`
	CompanyName     string    `json:"company_name"`
	Location        string    `json:"location"`
	ApplicationDate string    `json:"application_date"`
	SourceURL       *string   `json:"source_url"`
	Status          *string   `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewJobApplicationResponse(a application.JobApplication) JobApplicationResponse {
	var status *string
	if a.Status != nil {
		s := string(*a.Status)
		status = &s
	}
	return JobApplicationResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		JobTitle:        a.JobTitle,
		CompanyName:     a.CompanyName,
		Location:        a.Location,
		ApplicationDate: a.ApplicationDate.Format(dateLayout),
		SourceURL:       a.SourceURL,
		Status:          status,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func NewJobApplicationResponses(items []application.JobApplication) []JobApplicationResponse {
	out := make([]JobApplicationResponse, 0, len(items))
	for _, a := range items {
		out = append(out, NewJobApplicationResponse(a))
	}
	return out
}

func parseOptionalStatus(raw *string) (*timeline.Status, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	s, err := timeline.ParseStatus(*raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
