package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-trail/internal/config"
	"job-trail/internal/database"
	"job-trail/internal/database/migration"
	dbpostgres "job-trail/internal/database/postgres"
	"job-trail/internal/infrastructure/cache"
	"job-trail/internal/infrastructure/persistence/postgres"
	"job-trail/internal/observability"
	"job-trail/internal/pkg/jwt"
	"job-trail/internal/pkg/logger"
	"job-trail/internal/repository"
	"job-trail/internal/scraper"
	"job-trail/internal/usecase"
	ucauth "job-trail/internal/usecase/auth"
	useruc "job-trail/internal/usecase/user"
	"job-trail/internal/ws"
	"job-trail/migrations"

	charmLog "github.com/charmbracelet/log"
)

// Container owns every long-lived dependency of the server process.
type Container struct {
	Config config.Config
	Logger *charmLog.Logger
	DB     database.DB
	Redis  *cache.Redis
	Hub    *ws.Hub
	Tracer *observability.Tracer

	Auth            *ucauth.Service
	Users           *useruc.Service
	JobApplications *usecase.JobApplications
	Timelines       *usecase.TimelineEngine
	Interviews      *usecase.Interviews
}

func NewContainer(ctx context.Context, cfg config.Config, log *charmLog.Logger) (*Container, error) {
	log = logger.OrDiscard(log)
	if !cfg.Database.Configured() {
		return nil, errors.New("database is not configured: set DB_HOST, DB_NAME and DB_USER")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info("database connected", "host", cfg.Database.DBHost, "name", cfg.Database.DBName)

	return Assemble(cfg, db, cache.NewRedis(ctx, cfg.Redis, log), log), nil
}

// Assemble wires the usecases on top of already opened backends.
func Assemble(cfg config.Config, db database.DB, redis *cache.Redis, log *charmLog.Logger) *Container {
	log = logger.OrDiscard(log)
	c := &Container{
		Config: cfg,
		Logger: log,
		DB:     db,
		Redis:  redis,
		Hub:    ws.NewHub(log),
		Tracer: observability.NewTracer(nil),
	}

	tokens := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
		cfg.JWT.Issuer,
	)
	users := postgres.NewUserRepository(db)
	uow := repository.NewPostgresUnitOfWork(db)
	notifier := ws.NewNotifier(c.Hub)
	extractor := scraper.NewPostingExtractor(cfg.Scraper, log)

	c.Auth = ucauth.NewService(users, tokens, redis, log)
	c.Users = useruc.NewService(users)
	c.JobApplications = usecase.NewJobApplicationUsecase(uow, extractor, notifier, c.Tracer, log)
	c.Timelines = usecase.NewTimelineEngine(uow, notifier, c.Tracer, log)
	c.Interviews = usecase.NewInterviewUsecase(uow)

	return c
}

// Migrate applies pending schema migrations. A configured MIGRATIONS_DIR that
// exists on disk wins over the files embedded in the binary.
func (c *Container) Migrate(ctx context.Context) (int, error) {
	runner := migration.Runner{Dir: c.Config.Migrations.Dir, Source: migrations.FS, Logger: c.Logger.WithPrefix("migration")}
	if dirExists(c.Config.Migrations.Dir) {
		runner.Source = nil
	}
	n, err := runner.Run(ctx, c.DB.SQLDB())
	if err != nil {
		return n, fmt.Errorf("run migrations: %w", err)
	}
	return n, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
