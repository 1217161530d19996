package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"job-trail/internal/domain"
	"job-trail/internal/domain/interview"
	"job-trail/internal/domain/user"
	"job-trail/internal/repository"

	"github.com/google/uuid"
)

type CreateInterviewInput struct {
	Type            interview.Type
	InterviewDate   time.Time
	InterviewerName string
	Notes           string
}

type InterviewUsecase interface {
	List(ctx context.Context, p user.Principal, appID uuid.UUID) ([]interview.Interview, error)
	Get(ctx context.Context, p user.Principal, appID, id uuid.UUID) (interview.Interview, error)
	Create(ctx context.Context, p user.Principal, appID uuid.UUID, in CreateInterviewInput) (interview.Interview, error)
	Update(ctx context.Context, p user.Principal, appID, id uuid.UUID, patch interview.Patch) (interview.Interview, error)
	Delete(ctx context.Context, p user.Principal, appID, id uuid.UUID) error
}

// Interviews has the same ownership rules as the timeline but never touches
// the application status.
type Interviews struct {
	uow repository.UnitOfWork
}

func NewInterviewUsecase(uow repository.UnitOfWork) *Interviews {
	return &Interviews{uow: uow}
}

func (u *Interviews) List(ctx context.Context, p user.Principal, appID uuid.UUID) ([]interview.Interview, error) {
	s := u.uow.Stores()
	if _, err := s.JobApplications.GetOwned(ctx, appID, p.UserID); err != nil {
		return nil, err
	}
	return s.Interviews.List(ctx, appID)
}

func (u *Interviews) Get(ctx context.Context, p user.Principal, appID, id uuid.UUID) (interview.Interview, error) {
	s := u.uow.Stores()
	if _, err := s.JobApplications.GetOwned(ctx, appID, p.UserID); err != nil {
		return interview.Interview{}, err
	}
	return s.Interviews.Get(ctx, appID, id)
}

func (u *Interviews) Create(ctx context.Context, p user.Principal, appID uuid.UUID, in CreateInterviewInput) (interview.Interview, error) {
	kind, err := interview.ParseType(string(in.Type))
	if err != nil {
		return interview.Interview{}, err
	}
	if in.InterviewDate.IsZero() {
		return interview.Interview{}, fmt.Errorf("%w: interview date is required", domain.ErrValidation)
	}

	var created interview.Interview
	err = u.uow.WithinTx(ctx, func(ctx context.Context, s repository.Stores) error {
		if _, err := s.JobApplications.LockOwned(ctx, appID, p.UserID); err != nil {
			return err
		}
		var err error
		created, err = s.Interviews.Create(ctx, interview.NewInterview{
			JobApplicationID: appID,
			Type:             kind,
			InterviewDate:    in.InterviewDate,
			InterviewerName:  strings.TrimSpace(in.InterviewerName),
			Notes:            in.Notes,
		})
		return err
	})
	if err != nil {
		return interview.Interview{}, err
	}
	return created, nil
}

func (u *Interviews) Update(ctx context.Context, p user.Principal, appID, id uuid.UUID, patch interview.Patch) (interview.Interview, error) {
	if patch.Type != nil {
		kind, err := interview.ParseType(string(*patch.Type))
		if err != nil {
			return interview.Interview{}, err
		}
		patch.Type = &kind
	}
	if patch.InterviewerName != nil {
		name := strings.TrimSpace(*patch.InterviewerName)
		patch.InterviewerName = &name
	}
	if patch.InterviewDate != nil && patch.InterviewDate.IsZero() {
		return interview.Interview{}, fmt.Errorf("%w: interview date must not be empty", domain.ErrValidation)
	}

	var updated interview.Interview
	err := u.uow.WithinTx(ctx, func(ctx context.Context, s repository.Stores) error {
		if _, err := s.JobApplications.LockOwned(ctx, appID, p.UserID); err != nil {
			return err
		}
		var err error
		updated, err = s.Interviews.Update(ctx, appID, id, patch)
		return err
	})
	if err != nil {
		return interview.Interview{}, err
	}
	return updated, nil
}

func (u *Interviews) Delete(ctx context.Context, p user.Principal, appID, id uuid.UUID) error {
	return u.uow.WithinTx(ctx, func(ctx context.Context, s repository.Stores) error {
		if _, err := s.JobApplications.LockOwned(ctx, appID, p.UserID); err != nil {
			return err
		}
		return s.Interviews.SoftDelete(ctx, appID, id)
	})
}
