package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"job-trail/internal/database"
	"job-trail/internal/domain"
	"job-trail/internal/domain/interview"

	"github.com/google/uuid"
)

var ErrInterviewNotFound = fmt.Errorf("interview %w", domain.ErrNotFound)

type InterviewRepository interface {
	List(ctx context.Context, appID uuid.UUID) ([]interview.Interview, error)
	Get(ctx context.Context, appID, id uuid.UUID) (interview.Interview, error)
	Create(ctx context.Context, in interview.NewInterview) (interview.Interview, error)
	Update(ctx context.Context, appID, id uuid.UUID, patch interview.Patch) (interview.Interview, error)
	SoftDelete(ctx context.Context, appID, id uuid.UUID) error
	// SoftDeleteByApplication marks every live interview of appID deleted and
	// returns how many rows it touched.
	SoftDeleteByApplication(ctx context.Context, appID uuid.UUID) (int64, error)
}

type PostgresInterviewRepository struct {
	db database.Querier
}

func NewPostgresInterviewRepository(db database.Querier) *PostgresInterviewRepository {
	return &PostgresInterviewRepository{db: db}
}

const interviewColumns = `id, job_application_id, interview_type, interview_date, interviewer_name, notes, created_at, updated_at, deleted_at`

func (r *PostgresInterviewRepository) List(ctx context.Context, appID uuid.UUID) ([]interview.Interview, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+interviewColumns+`
		 FROM job_interviews
		 WHERE job_application_id = $1 AND deleted_at IS NULL
		 ORDER BY interview_date DESC, created_at DESC`,
		appID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]interview.Interview, 0)
	for rows.Next() {
		in, err := scanInterviewFields(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresInterviewRepository) Get(ctx context.Context, appID, id uuid.UUID) (interview.Interview, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+interviewColumns+`
		 FROM job_interviews
		 WHERE id = $1 AND job_application_id = $2 AND deleted_at IS NULL`,
		id, appID,
	)
	return scanInterview(row)
}

func (r *PostgresInterviewRepository) Create(ctx context.Context, in interview.NewInterview) (interview.Interview, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO job_interviews (id, job_application_id, interview_type, interview_date, interviewer_name, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+interviewColumns,
		uuid.New(), in.JobApplicationID, string(in.Type), in.InterviewDate.UTC(), in.InterviewerName, in.Notes,
	)
	return scanInterview(row)
}

func (r *PostgresInterviewRepository) Update(ctx context.Context, appID, id uuid.UUID, patch interview.Patch) (interview.Interview, error) {
	if patch.Empty() {
		return r.Get(ctx, appID, id)
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Type != nil {
		add("interview_type", string(*patch.Type))
	}
	if patch.InterviewDate != nil {
		add("interview_date", patch.InterviewDate.UTC())
	}
	if patch.InterviewerName != nil {
		add("interviewer_name", *patch.InterviewerName)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id, appID)

	row := r.db.QueryRow(ctx,
		fmt.Sprintf(
			`UPDATE job_interviews SET %s
			 WHERE id = $%d AND job_application_id = $%d AND deleted_at IS NULL
			 RETURNING `+interviewColumns,
			strings.Join(sets, ", "), len(args)-1, len(args),
		),
		args...,
	)
	return scanInterview(row)
}

func (r *PostgresInterviewRepository) SoftDelete(ctx context.Context, appID, id uuid.UUID) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE job_interviews SET deleted_at = now(), updated_at = now()
		 WHERE id = $1 AND job_application_id = $2 AND deleted_at IS NULL`,
		id, appID,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInterviewNotFound
	}
	return nil
}

func (r *PostgresInterviewRepository) SoftDeleteByApplication(ctx context.Context, appID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE job_interviews SET deleted_at = now(), updated_at = now()
		 WHERE job_application_id = $1 AND deleted_at IS NULL`,
		appID,
	)
}

func scanInterview(row database.Row) (interview.Interview, error) {
	in, err := scanInterviewFields(row)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return interview.Interview{}, ErrInterviewNotFound
		}
		return interview.Interview{}, err
	}
	return in, nil
}

func scanInterviewFields(row database.Row) (interview.Interview, error) {
	var in interview.Interview
	var typ string
	if err := row.Scan(
		&in.ID, &in.JobApplicationID, &typ, &in.InterviewDate, &in.InterviewerName, &in.Notes,
		&in.CreatedAt, &in.UpdatedAt, &in.DeletedAt,
	); err != nil {
		return interview.Interview{}, err
	}
	t, err := interview.ParseType(typ)
	if err != nil {
		return interview.Interview{}, fmt.Errorf("stored interview %s: %w", in.ID, err)
	}
	in.Type = t
	return in, nil
}
