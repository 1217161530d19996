package app

import (
	"fmt"
	"os"
	"strings"

	"job-trail/internal/delivery/http/handler"
	"job-trail/internal/delivery/http/middleware"
	"job-trail/internal/delivery/http/routes"
	v1 "job-trail/internal/delivery/http/routes/v1"
	"job-trail/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
}

// New builds the HTTP application on top of an initialised container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName: c.Config.App.AppName,
	})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f}
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(c.Logger)
	errMw := middleware.NewErrorMiddleware(c.Logger)
	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	handlers := v1.Handlers{
		Auth:            handler.NewAuthHandler(c.Auth),
		User:            handler.NewUserHandler(c.Users),
		JobApplications: handler.NewJobApplicationHandler(c.JobApplications),
		Timelines:       handler.NewTimelineHandler(c.Timelines),
		Interviews:      handler.NewInterviewHandler(c.Interviews),
	}
	health := handler.NewHealthHandler(c.DB, c.Redis)
	wsHandler := ws.NewHandler(c.Hub, c.Auth, c.Logger)

	routes.NewRegistry(health, wsHandler.Handle, handlers, middleware.NewAuthMiddleware(c.Auth)).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}

func dirExists(path string) bool {
	path = strings.TrimSpace(path)
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
