// Package server exposes the project catalog over HTTP with the same routes
// the hosted GitHub Glimpse API serves.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"githubglimpse/logger"
	"githubglimpse/models"
)

// Catalog is the storage and ingestion side the handlers delegate to.
type Catalog interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, name string) (*models.Project, error)
	AddRepository(ctx context.Context, rawURL string) (models.Project, error)
	RemoveRepository(ctx context.Context, name string) error
	Ping(ctx context.Context) error
}

// Options configures the HTTP server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server wraps the fiber app.
type Server struct {
	app  *fiber.App
	addr string
}

// New builds the app and mounts every route.
func New(catalog Catalog, opts Options) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "githubglimpse",
		DisableStartupMessage: true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          errorHandler,
	})

	app.Use(requestLogger())
	RegisterRoutes(app, catalog)

	return &Server{app: app, addr: opts.Addr}
}

// RegisterRoutes mounts the handlers on app.
func RegisterRoutes(app *fiber.App, catalog Catalog) {
	NewHealthHandler(catalog).Register(app)
	NewRepoHandler(catalog).Register(app)
	NewViewHandler(catalog).Register(app)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called.
func (s *Server) Listen() error {
	logger.Info("Catalog server listening", zap.String("addr", s.addr))
	return s.app.Listen(s.addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler renders every error as {"message": "..."}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logger.Error("Request failed",
			zap.Error(err),
			zap.String("path", c.Path()),
			zap.Any("request_id", c.Locals(requestIDKey)))
	}
	return c.Status(code).JSON(models.SubmitResponse{Message: err.Error()})
}
