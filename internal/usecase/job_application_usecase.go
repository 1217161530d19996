package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"job-trail/internal/domain"
	"job-trail/internal/domain/application"
	"job-trail/internal/domain/timeline"
	"job-trail/internal/domain/user"
	"job-trail/internal/observability"
	"job-trail/internal/pkg/logger"
	"job-trail/internal/repository"
	"job-trail/internal/scraper"

	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type CreateJobApplicationInput struct {
	JobTitle        string
	CompanyName     string
	Location        string
	ApplicationDate time.Time
	// Status picks the first timeline event; nil starts at saved.
	Status    *timeline.Status
	SourceURL *string
}

type ImportJobApplicationInput struct {
	URL             string
	ApplicationDate *time.Time
	Status          *timeline.Status
}

type ListJobApplicationsParams struct {
	Page     int
	PageSize int
	Search   string
	Status   *timeline.Status
}

type JobApplicationPage struct {
	Items    []application.JobApplication
	Page     int
	PageSize int
	Total    int
}

// PostingExtractor reads a job posting page into its descriptive fields.
type PostingExtractor interface {
	Extract(ctx context.Context, rawURL string) (scraper.Posting, error)
}

type JobApplicationUsecase interface {
	Create(ctx context.Context, p user.Principal, in CreateJobApplicationInput) (application.JobApplication, error)
	Import(ctx context.Context, p user.Principal, in ImportJobApplicationInput) (application.JobApplication, error)
	List(ctx context.Context, p user.Principal, params ListJobApplicationsParams) (JobApplicationPage, error)
	ListAll(ctx context.Context, p user.Principal, params ListJobApplicationsParams) (JobApplicationPage, error)
	Get(ctx context.Context, p user.Principal, appID uuid.UUID) (application.JobApplication, error)
	Update(ctx context.Context, p user.Principal, appID uuid.UUID, patch application.Patch) (application.JobApplication, error)
	Delete(ctx context.Context, p user.Principal, appID uuid.UUID) error
}

type JobApplications struct {
	uow       repository.UnitOfWork
	extractor PostingExtractor
	notifier  ChangeNotifier
	tracer    *observability.Tracer
	logger    *charmLog.Logger
	now       func() time.Time
}

func NewJobApplicationUsecase(uow repository.UnitOfWork, extractor PostingExtractor, notifier ChangeNotifier, tracer *observability.Tracer, log *charmLog.Logger) *JobApplications {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if tracer == nil {
		tracer = observability.NewTracer(nil)
	}
	return &JobApplications{
		uow:       uow,
		extractor: extractor,
		notifier:  notifier,
		tracer:    tracer,
		logger:    logger.OrDiscard(log).WithPrefix("job_application"),
		now:       time.Now,
	}
}

func (u *JobApplications) Create(ctx context.Context, p user.Principal, in CreateJobApplicationInput) (application.JobApplication, error) {
	in.JobTitle = strings.TrimSpace(in.JobTitle)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Location = strings.TrimSpace(in.Location)
	if in.JobTitle == "" || in.CompanyName == "" {
		return application.JobApplication{}, fmt.Errorf("%w: job title and company name are required", domain.ErrValidation)
	}
	if in.ApplicationDate.IsZero() {
		return application.JobApplication{}, fmt.Errorf("%w: application date is required", domain.ErrValidation)
	}
	kind := timeline.KindSaved
	if in.Status != nil {
		k, err := timeline.EventForStatus(*in.Status)
		if err != nil {
			return application.JobApplication{}, err
		}
		kind = k
	}

	ctx, span := u.tracer.StartJobApplication(ctx, "create", uuid.Nil)
	var created application.JobApplication
	err := u.uow.WithinTx(ctx, func(ctx context.Context, s repository.Stores) error {
		app, err := s.JobApplications.Create(ctx, application.NewJobApplication{
			UserID:          p.UserID,
			JobTitle:        in.JobTitle,
			CompanyName:     in.CompanyName,
			Location:        in.Location,
			ApplicationDate: in.ApplicationDate,
			SourceURL:       in.SourceURL,
		})
		if err != nil {
			return fmt.Errorf("create job application: %w", err)
		}
		_, status, err := appendAndProject(ctx, s, timeline.NewEvent{
			JobApplicationID: app.ID,
			Kind:             kind,
			EventDate:        in.ApplicationDate,
		})
		if err != nil {
			return err
		}
		app.Status = status
		created = app
		return nil
	})
	u.tracer.End(span, err)
	if err != nil {
		return application.JobApplication{}, err
	}

	u.logger.Info("job application created", "job_application_id", created.ID, "user_id", p.UserID, "status", statusLabel(created.Status))
	u.notify(ctx, p.UserID, created.ID, created.Status)
	return created, nil
}

func (u *JobApplications) Import(ctx context.Context, p user.Principal, in ImportJobApplicationInput) (application.JobApplication, error) {
	if u.extractor == nil {
		return application.JobApplication{}, fmt.Errorf("%w: posting import is not available", domain.ErrValidation)
	}
	rawURL := strings.TrimSpace(in.URL)
	posting, err := u.extractor.Extract(ctx, rawURL)
	if err != nil {
		u.logger.Warn("posting import failed", "url", rawURL, "err", err)
		return application.JobApplication{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	applied := u.now().UTC()
	if in.ApplicationDate != nil {
		applied = *in.ApplicationDate
	}
	source := posting.URL
	if source == "" {
		source = rawURL
	}
	return u.Create(ctx, p, CreateJobApplicationInput{
		JobTitle:        posting.Title,
		CompanyName:     posting.Company,
		Location:        posting.Location,
		ApplicationDate: applied,
		Status:          in.Status,
		SourceURL:       &source,
	})
}

func (u *JobApplications) List(ctx context.Context, p user.Principal, params ListJobApplicationsParams) (JobApplicationPage, error) {
	owner := p.UserID
	return u.list(ctx, params, &owner)
}

func (u *JobApplications) ListAll(ctx context.Context, p user.Principal, params ListJobApplicationsParams) (JobApplicationPage, error) {
	if !p.IsAdmin() {
		return JobApplicationPage{}, fmt.Errorf("list all job applications: %w", domain.ErrForbidden)
	}
	return u.list(ctx, params, nil)
}

func (u *JobApplications) list(ctx context.Context, params ListJobApplicationsParams, owner *uuid.UUID) (JobApplicationPage, error) {
	page, size, err := normalizePage(params.Page, params.PageSize)
	if err != nil {
		return JobApplicationPage{}, err
	}
	items, total, err := u.uow.Stores().JobApplications.List(ctx, application.ListFilter{
		UserID: owner,
		Search: params.Search,
		Status: params.Status,
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		return JobApplicationPage{}, fmt.Errorf("list job applications: %w", err)
	}
	return JobApplicationPage{Items: items, Page: page, PageSize: size, Total: total}, nil
}

func normalizePage(page, size int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		return 0, 0, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if size < 1 || size > MaxPageSize {
		return 0, 0, fmt.Errorf("%w: page_size must be between 1 and %d", domain.ErrValidation, MaxPageSize)
	}
	return page, size, nil
}

func (u *JobApplications) Get(ctx context.Context, p user.Principal, appID uuid.UUID) (application.JobApplication, error) {
	return u.uow.Stores().JobApplications.GetOwned(ctx, appID, p.UserID)
}

func (u *JobApplications) Update(ctx context.Context, p user.Principal, appID uuid.UUID, patch application.Patch) (application.JobApplication, error) {
	if patch.JobTitle != nil && strings.TrimSpace(*patch.JobTitle) == "" {
		return application.JobApplication{}, fmt.Errorf("%w: job title must not be empty", domain.ErrValidation)
	}
	if patch.CompanyName != nil && strings.TrimSpace(*patch.CompanyName) == "" {
		return application.JobApplication{}, fmt.Errorf("%w: company name must not be empty", domain.ErrValidation)
	}
	if patch.ApplicationDate != nil && patch.ApplicationDate.IsZero() {
		return application.JobApplication{}, fmt.Errorf("%w: application date must not be empty", domain.ErrValidation)
	}

	var updated application.JobApplication
	err := u.uow.WithinTx(ctx, func(ctx context.Context, s repository.Stores) error {
		current, err := s.JobApplications.LockOwned(ctx, appID, p.UserID)
		if err != nil {
			return err
		}
		if patch.Empty() {
			updated = current
			return nil
		}
		updated, err = s.JobApplications.Update(ctx, appID, patch)
		return err
	})
	if err != nil {
		return application.JobApplication{}, err
	}
	return updated, nil
}

// Delete soft-deletes the application, then its live interviews, in one
// transaction.
func (u *JobApplications) Delete(ctx context.Context, p user.Principal, appID uuid.UUID) error {
	ctx, span := u.tracer.StartJobApplication(ctx, "delete", appID)
	var cascaded int64
	err := u.uow.WithinTx(ctx, func(ctx context.Context, s repository.Stores) error {
		if _, err := s.JobApplications.LockOwned(ctx, appID, p.UserID); err != nil {
			return err
		}
		if err := s.JobApplications.SoftDelete(ctx, appID); err != nil {
			return fmt.Errorf("delete job application: %w", err)
		}
		n, err := s.Interviews.SoftDeleteByApplication(ctx, appID)
		if err != nil {
			return fmt.Errorf("cascade interviews: %w", err)
		}
		cascaded = n
		return nil
	})
	u.tracer.End(span, err)
	if err != nil {
		return err
	}

	u.logger.Info("job application deleted", "job_application_id", appID, "interviews", cascaded)
	u.notify(ctx, p.UserID, appID, nil)
	return nil
}

func (u *JobApplications) notify(ctx context.Context, userID, appID uuid.UUID, status *timeline.Status) {
	u.notifier.TimelineChanged(ctx, TimelineChange{
		UserID:           userID,
		JobApplicationID: appID,
		Status:           status,
		At:               u.now().UTC(),
	})
}
