package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"job-trail/internal/database"
	"job-trail/internal/domain"
	"job-trail/internal/domain/application"
	"job-trail/internal/domain/timeline"

	"github.com/google/uuid"
)

var (
	// ErrJobApplicationForbidden covers a missing, deleted or foreign
	// application alike, so callers cannot probe for ids they do not own.
	ErrJobApplicationForbidden = fmt.Errorf("job application %w", domain.ErrForbidden)
	ErrJobApplicationNotFound  = fmt.Errorf("job application %w", domain.ErrNotFound)
)

type JobApplicationRepository interface {
	Create(ctx context.Context, in application.NewJobApplication) (application.JobApplication, error)
	// LockOwned returns the live application owned by userID and holds a row
	// lock on it until the surrounding transaction ends.
	LockOwned(ctx context.Context, appID, userID uuid.UUID) (application.JobApplication, error)
	GetOwned(ctx context.Context, appID, userID uuid.UUID) (application.JobApplication, error)
	SetStatus(ctx context.Context, appID uuid.UUID, status *timeline.Status) error
	List(ctx context.Context, filter application.ListFilter) ([]application.JobApplication, int, error)
	Update(ctx context.Context, appID uuid.UUID, patch application.Patch) (application.JobApplication, error)
	SoftDelete(ctx context.Context, appID uuid.UUID) error
}

type PostgresJobApplicationRepository struct {
	db database.Querier
}

func NewPostgresJobApplicationRepository(db database.Querier) *PostgresJobApplicationRepository {
	return &PostgresJobApplicationRepository{db: db}
}

const jobApplicationColumns = `id, user_id, job_title, company_name, location, application_date, source_url, status, created_at, updated_at, deleted_at`

func (r *PostgresJobApplicationRepository) Create(ctx context.Context, in application.NewJobApplication) (application.JobApplication, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO job_applications (id, user_id, job_title, company_name, location, application_date, source_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+jobApplicationColumns,
		uuid.New(), in.UserID, in.JobTitle, in.CompanyName, in.Location, in.ApplicationDate, in.SourceURL,
	)
	return scanJobApplication(row)
}

func (r *PostgresJobApplicationRepository) LockOwned(ctx context.Context, appID, userID uuid.UUID) (application.JobApplication, error) {
	return r.owned(ctx, appID, userID, " FOR UPDATE")
}

func (r *PostgresJobApplicationRepository) GetOwned(ctx context.Context, appID, userID uuid.UUID) (application.JobApplication, error) {
	return r.owned(ctx, appID, userID, "")
}

func (r *PostgresJobApplicationRepository) owned(ctx context.Context, appID, userID uuid.UUID, lock string) (application.JobApplication, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+jobApplicationColumns+`
		 FROM job_applications
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`+lock,
		appID, userID,
	)
	app, err := scanJobApplication(row)
	if errors.Is(err, ErrJobApplicationNotFound) {
		return application.JobApplication{}, ErrJobApplicationForbidden
	}
	return app, err
}

func (r *PostgresJobApplicationRepository) SetStatus(ctx context.Context, appID uuid.UUID, status *timeline.Status) error {
	var raw *string
	if status != nil {
		s := string(*status)
		raw = &s
	}
	affected, err := r.db.Exec(ctx,
		`UPDATE job_applications SET status = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL`,
		raw, appID,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrJobApplicationNotFound
	}
	return nil
}

func (r *PostgresJobApplicationRepository) List(ctx context.Context, filter application.ListFilter) ([]application.JobApplication, int, error) {
	where := []string{"deleted_at IS NULL"}
	args := make([]any, 0, 5)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != nil {
		where = append(where, "user_id = "+arg(*filter.UserID))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		p := arg(likeEscaper.Replace(strings.ToLower(q)))
		where = append(where, fmt.Sprintf(
			"(lower(company_name) LIKE '%%' || %s || '%%' OR lower(job_title) LIKE '%%' || %s || '%%')", p, p,
		))
	}
	if filter.Status != nil {
		where = append(where, "status = "+arg(string(*filter.Status)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM job_applications WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := arg(filter.Limit)
	offset := arg(filter.Offset)
	rows, err := r.db.Query(ctx,
		`SELECT `+jobApplicationColumns+`
		 FROM job_applications
		 WHERE `+clause+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT `+limit+` OFFSET `+offset,
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]application.JobApplication, 0)
	for rows.Next() {
		app, err := scanJobApplicationFields(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresJobApplicationRepository) Update(ctx context.Context, appID uuid.UUID, patch application.Patch) (application.JobApplication, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 5)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.JobTitle != nil {
		add("job_title", *patch.JobTitle)
	}
	if patch.CompanyName != nil {
		add("company_name", *patch.CompanyName)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.ApplicationDate != nil {
		add("application_date", *patch.ApplicationDate)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, appID)

	row := r.db.QueryRow(ctx,
		fmt.Sprintf(
			`UPDATE job_applications SET %s
			 WHERE id = $%d AND deleted_at IS NULL
			 RETURNING `+jobApplicationColumns,
			strings.Join(sets, ", "), len(args),
		),
		args...,
	)
	return scanJobApplication(row)
}

func (r *PostgresJobApplicationRepository) SoftDelete(ctx context.Context, appID uuid.UUID) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE job_applications SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		appID,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrJobApplicationNotFound
	}
	return nil
}

func scanJobApplication(row database.Row) (application.JobApplication, error) {
	app, err := scanJobApplicationFields(row)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return application.JobApplication{}, ErrJobApplicationNotFound
		}
		return application.JobApplication{}, err
	}
	return app, nil
}

func scanJobApplicationFields(row database.Row) (application.JobApplication, error) {
	var app application.JobApplication
	var status *string
	if err := row.Scan(
		&app.ID, &app.UserID, &app.JobTitle, &app.CompanyName, &app.Location, &app.ApplicationDate,
		&app.SourceURL, &status, &app.CreatedAt, &app.UpdatedAt, &app.DeletedAt,
	); err != nil {
		return application.JobApplication{}, err
	}
	if status != nil {
		s, err := timeline.ParseStatus(*status)
		if err != nil {
			return application.JobApplication{}, fmt.Errorf("stored application %s: %w", app.ID, err)
		}
		app.Status = &s
	}
	return app, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
