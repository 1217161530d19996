package seeder

import (
	"context"
	"fmt"

	"job-trail/internal/database"
	"job-trail/internal/pkg/logger"

	charmLog "github.com/charmbracelet/log"
)

type Runner struct {
	Seeders []Seeder
	Logger  *charmLog.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	log := logger.OrDiscard(r.Logger)
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.Info("seeder finished", "name", s.Name())
	}
	return nil
}
