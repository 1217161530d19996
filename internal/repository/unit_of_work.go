package repository

import (
	"context"

	"job-trail/internal/database"
)

// Stores groups the repositories that share one database scope.
type Stores struct {
	JobApplications JobApplicationRepository
	Timelines       TimelineRepository
	Interviews      InterviewRepository
}

// UnitOfWork hands out Stores bound either to the pool or to a single
// transaction.
type UnitOfWork interface {
	Stores() Stores
	// WithinTx commits when fn returns nil and rolls back otherwise,
	// including when ctx is cancelled before commit.
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

type PostgresUnitOfWork struct {
	db database.DB
}

func NewPostgresUnitOfWork(db database.DB) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db}
}

func (u *PostgresUnitOfWork) Stores() Stores {
	return storesOn(u.db)
}

func (u *PostgresUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return database.WithTx(ctx, u.db, func(tx database.Tx) error {
		return fn(ctx, storesOn(tx))
	})
}

func storesOn(q database.Querier) Stores {
	return Stores{
		JobApplications: NewPostgresJobApplicationRepository(q),
		Timelines:       NewPostgresTimelineRepository(q),
		Interviews:      NewPostgresInterviewRepository(q),
	}
}
