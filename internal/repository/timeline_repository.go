package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"job-trail/internal/database"
	"job-trail/internal/domain"
	"job-trail/internal/domain/timeline"

	"github.com/google/uuid"
)

var ErrTimelineNotFound = fmt.Errorf("timeline event %w", domain.ErrNotFound)

// TimelineRepository is scoped to one job application per call and never
// returns soft-deleted rows.
type TimelineRepository interface {
	// ListLive orders by event date, newest first; ties go to the most
	// recently created event.
	ListLive(ctx context.Context, appID uuid.UUID) ([]timeline.Event, error)
	// ListLiveByCreation orders by insertion sequence, newest first.
	ListLiveByCreation(ctx context.Context, appID uuid.UUID) ([]timeline.Event, error)
	Get(ctx context.Context, appID, eventID uuid.UUID) (timeline.Event, error)
	Append(ctx context.Context, ev timeline.NewEvent) (timeline.Event, error)
	SoftDelete(ctx context.Context, appID, eventID uuid.UUID) (timeline.Event, error)
	HardDelete(ctx context.Context, appID uuid.UUID, eventIDs ...uuid.UUID) error
	UpdateFields(ctx context.Context, appID, eventID uuid.UUID, patch timeline.Patch) (timeline.Event, error)
}

type PostgresTimelineRepository struct {
	db database.Querier
}

func NewPostgresTimelineRepository(db database.Querier) *PostgresTimelineRepository {
	return &PostgresTimelineRepository{db: db}
}

const timelineColumns = `id, job_application_id, event_type, event_date, notes, seq, created_at, updated_at, deleted_at`

func (r *PostgresTimelineRepository) ListLive(ctx context.Context, appID uuid.UUID) ([]timeline.Event, error) {
	return r.list(ctx,
		`SELECT `+timelineColumns+`
		 FROM job_timelines
		 WHERE job_application_id = $1 AND deleted_at IS NULL
		 ORDER BY event_date DESC, seq DESC`,
		appID,
	)
}

func (r *PostgresTimelineRepository) ListLiveByCreation(ctx context.Context, appID uuid.UUID) ([]timeline.Event, error) {
	return r.list(ctx,
		`SELECT `+timelineColumns+`
		 FROM job_timelines
		 WHERE job_application_id = $1 AND deleted_at IS NULL
		 ORDER BY seq DESC`,
		appID,
	)
}

func (r *PostgresTimelineRepository) list(ctx context.Context, query string, args ...any) ([]timeline.Event, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]timeline.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresTimelineRepository) Get(ctx context.Context, appID, eventID uuid.UUID) (timeline.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+timelineColumns+`
		 FROM job_timelines
		 WHERE id = $1 AND job_application_id = $2 AND deleted_at IS NULL`,
		eventID, appID,
	)
	return scanEventRow(row)
}

func (r *PostgresTimelineRepository) Append(ctx context.Context, ev timeline.NewEvent) (timeline.Event, error) {
	if !ev.Kind.Valid() {
		return timeline.Event{}, fmt.Errorf("%w: invalid event kind", domain.ErrValidation)
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO job_timelines (id, job_application_id, event_type, event_date, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+timelineColumns,
		uuid.New(), ev.JobApplicationID, ev.Kind.String(), ev.EventDate.UTC(), ev.Notes,
	)
	return scanEventRow(row)
}

func (r *PostgresTimelineRepository) SoftDelete(ctx context.Context, appID, eventID uuid.UUID) (timeline.Event, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE job_timelines
		 SET deleted_at = now(), updated_at = now()
		 WHERE id = $1 AND job_application_id = $2 AND deleted_at IS NULL
		 RETURNING `+timelineColumns,
		eventID, appID,
	)
	return scanEventRow(row)
}

func (r *PostgresTimelineRepository) HardDelete(ctx context.Context, appID uuid.UUID, eventIDs ...uuid.UUID) error {
	if len(eventIDs) == 0 {
		return nil
	}
	affected, err := r.db.Exec(ctx,
		`DELETE FROM job_timelines WHERE job_application_id = $1 AND id = ANY($2)`,
		appID, eventIDs,
	)
	if err != nil {
		return err
	}
	if affected != int64(len(eventIDs)) {
		return fmt.Errorf("%w: removed %d of %d", ErrTimelineNotFound, affected, len(eventIDs))
	}
	return nil
}

func (r *PostgresTimelineRepository) UpdateFields(ctx context.Context, appID, eventID uuid.UUID, patch timeline.Patch) (timeline.Event, error) {
	if patch.Empty() {
		return r.Get(ctx, appID, eventID)
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Kind != nil {
		add("event_type", patch.Kind.String())
	}
	if patch.EventDate != nil {
		add("event_date", patch.EventDate.UTC())
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, eventID, appID)

	row := r.db.QueryRow(ctx,
		fmt.Sprintf(
			`UPDATE job_timelines SET %s
			 WHERE id = $%d AND job_application_id = $%d AND deleted_at IS NULL
			 RETURNING `+timelineColumns,
			strings.Join(sets, ", "), len(args)-1, len(args),
		),
		args...,
	)
	return scanEventRow(row)
}

func scanEventRow(row database.Row) (timeline.Event, error) {
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return timeline.Event{}, ErrTimelineNotFound
		}
		return timeline.Event{}, err
	}
	return ev, nil
}

func scanEvent(row database.Row) (timeline.Event, error) {
	var ev timeline.Event
	var kind string
	if err := row.Scan(
		&ev.ID, &ev.JobApplicationID, &kind, &ev.EventDate, &ev.Notes, &ev.Seq,
		&ev.CreatedAt, &ev.UpdatedAt, &ev.DeletedAt,
	); err != nil {
		return timeline.Event{}, err
	}
	k, err := timeline.ParseEventKind(kind)
	if err != nil {
		return timeline.Event{}, fmt.Errorf("stored event %s: %w", ev.ID, err)
	}
	ev.Kind = k
	return ev, nil
}
