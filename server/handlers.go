package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"githubglimpse/db"
	"githubglimpse/fetcher"
	"githubglimpse/github"
	"githubglimpse/logger"
	"githubglimpse/models"
	"githubglimpse/view"
)

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	catalog Catalog
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(catalog Catalog) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

// Register mounts GET /health.
func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.health)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.catalog.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "db": "error"})
	}
	return c.JSON(fiber.Map{"status": "ok", "db": "connected"})
}

// RepoHandler wires HTTP → Catalog.
type RepoHandler struct {
	catalog Catalog
}

// NewRepoHandler creates a new RepoHandler.
func NewRepoHandler(catalog Catalog) *RepoHandler {
	return &RepoHandler{catalog: catalog}
}

// Register mounts the catalog routes.
func (h *RepoHandler) Register(r fiber.Router) {
	r.Get("/repos", h.listRepos)
	r.Get("/repos/:owner/:name", h.getRepo)
	r.Delete("/repos/:owner/:name", h.deleteRepo)
	r.Post("/add-repo", h.addRepo)
}

// listRepos handles GET /repos
func (h *RepoHandler) listRepos(c *fiber.Ctx) error {
	projects, err := h.catalog.ListProjects(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list projects")
	}
	return c.JSON(projects)
}

// getRepo handles GET /repos/:owner/:name
func (h *RepoHandler) getRepo(c *fiber.Ctx) error {
	name := c.Params("owner") + "/" + c.Params("name")

	project, err := h.catalog.GetProject(c.UserContext(), name)
	switch {
	case err == nil:
		return c.JSON(project)
	case errors.Is(err, db.ErrProjectNotFound):
		return fiber.NewError(fiber.StatusNotFound, "project not found")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to get project")
	}
}

// deleteRepo handles DELETE /repos/:owner/:name
func (h *RepoHandler) deleteRepo(c *fiber.Ctx) error {
	name := c.Params("owner") + "/" + c.Params("name")

	err := h.catalog.RemoveRepository(c.UserContext(), name)
	switch {
	case err == nil:
		logger.Info("Repository removed", zap.String("name", name))
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, db.ErrProjectNotFound):
		return fiber.NewError(fiber.StatusNotFound, "project not found")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to remove project")
	}
}

// addRepo handles POST /add-repo  { "url": "https://github.com/owner/repo" }
func (h *RepoHandler) addRepo(c *fiber.Ctx) error {
	var req models.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if strings.TrimSpace(req.URL) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "url is required")
	}

	project, err := h.catalog.AddRepository(c.UserContext(), req.URL)
	switch {
	case err == nil:
	case errors.Is(err, fetcher.ErrInvalidRepoURL):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, github.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "repository not found on GitHub")
	default:
		logger.Warn("Failed to add repository", zap.String("url", req.URL), zap.Error(err))
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch repository from GitHub")
	}

	return c.Status(fiber.StatusCreated).JSON(models.SubmitResponse{
		Message: fmt.Sprintf("Repository %s added successfully!", project.Name),
	})
}

// ViewHandler applies the view pipeline server side.
type ViewHandler struct {
	catalog Catalog
}

// NewViewHandler creates a ViewHandler.
func NewViewHandler(catalog Catalog) *ViewHandler {
	return &ViewHandler{catalog: catalog}
}

// Register mounts GET /view.
func (h *ViewHandler) Register(r fiber.Router) {
	r.Get("/view", h.view)
}

// view handles GET /view?language=Go&tag=bug&q=react&sort=stars&direction=desc&page=1
func (h *ViewHandler) view(c *fiber.Ctx) error {
	params, err := paramsFromQuery(c)
	if err != nil {
		return err
	}

	projects, err := h.catalog.ListProjects(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list projects")
	}

	return c.JSON(view.Derive(projects, params))
}

// paramsFromQuery reads view parameters from the query string. tag and
// favorite may repeat or hold comma separated lists.
func paramsFromQuery(c *fiber.Ctx) (models.ViewParams, error) {
	params := models.DefaultViewParams()

	if lang := c.Query("language"); lang != "" {
		params.Language = lang
	}
	params.Tags = view.UniqueTags(multiQuery(c, "tag"))
	params.RepoSearch = c.Query("q")
	params.IssueSearch = c.Query("issue_q")

	opts := view.SortOptions{
		Field:     models.SortField(c.Query("sort", string(models.SortByStars))),
		Direction: models.SortDirection(c.Query("direction")),
	}.Normalize()
	params.SortField = opts.Field
	params.SortDirection = opts.Direction

	if favs := multiQuery(c, "favorite"); len(favs) > 0 {
		params.Favorites = make(map[string]bool, len(favs))
		for _, f := range favs {
			params.Favorites[f] = true
		}
	}

	params.Page = c.QueryInt("page", 1)
	params.PageSize = c.QueryInt("page_size", models.DefaultPageSize)
	if params.PageSize < 1 {
		return params, fiber.NewError(fiber.StatusBadRequest, "page_size must be at least 1")
	}
	return params, nil
}

func multiQuery(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, part := range strings.Split(string(raw), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
