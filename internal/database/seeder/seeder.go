// Package seeder provisions rows the application cannot create through its
// own API, such as the first administrator.
package seeder

import (
	"context"

	"job-trail/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
