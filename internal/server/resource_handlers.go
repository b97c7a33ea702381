package server

import (
	"context"

	"pitchside/internal/authz"
	"pitchside/internal/models"
	"pitchside/internal/query"
	"pitchside/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// resourceStore is the data access surface the generic handlers need.
// *repository.Resource[T] implements it.
type resourceStore[T any] interface {
	Name() string
	Spec() query.Spec
	List(ctx context.Context, p query.Params) ([]T, int64, error)
	GetByID(ctx context.Context, id uint) (*T, error)
	Create(ctx context.Context, rec *T) (*T, error)
	Update(ctx context.Context, rec *T) (*T, error)
	Delete(ctx context.Context, id uint) error
	Toggle(ctx context.Context, id uint, column string) (*T, error)
	Increment(ctx context.Context, id uint, column string) (*T, error)
}

// toggleRoute maps a PUT /:id/<path> endpoint onto a boolean column.
type toggleRoute struct {
	path   string
	column string
}

var (
	toggleActive = toggleRoute{path: "toggle-active", column: "is_active"}
	toggleLive   = toggleRoute{path: "toggle-live", column: "is_live"}
)

// resourceHandlers serves the CRUD surface of one resource.
type resourceHandlers[T any] struct {
	store  resourceStore[T]
	plural string
}

// mountResource registers list, get, create, update, delete and the toggles of store on router.
// Reads are public; writes require a role allowed to write content.
func mountResource[T any](s *Server, router fiber.Router, store resourceStore[T], plural string, toggles ...toggleRoute) {
	h := &resourceHandlers[T]{store: store, plural: plural}
	write := []fiber.Handler{s.AuthRequired(), s.Permit(authz.ObjContent, authz.ActWrite)}

	router.Get("/", h.List)
	router.Post("/", append(write, h.Create)...)
	for _, t := range toggles {
		router.Put("/:id/"+t.path, append(write, h.Toggle(t.column))...)
	}
	router.Get("/:id", h.Get)
	router.Put("/:id", append(write, h.Update)...)
	router.Delete("/:id", append(write, h.Delete)...)
}

// List handles GET /api/<resource>
func (h *resourceHandlers[T]) List(c *fiber.Ctx) error {
	params, err := h.store.Spec().Parse(c.Query)
	if err != nil {
		return respondError(c, err)
	}

	items, total, err := h.store.List(c.UserContext(), params)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    h.plural + " retrieved successfully",
		"data":       items,
		"pagination": query.NewPagination(total, params.Page, params.Limit),
	})
}

// Get handles GET /api/<resource>/:id
func (h *resourceHandlers[T]) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	rec, err := h.store.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": rec})
}

// Create handles POST /api/<resource>
func (h *resourceHandlers[T]) Create(c *fiber.Ctx) error {
	rec := new(T)
	if d, ok := any(rec).(models.Defaulter); ok {
		d.SetDefaults()
	}
	if appErr := parseBody(c, rec); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}
	if r, ok := any(rec).(models.Record); ok {
		*r.Identity() = models.Base{}
	}
	if appErr := validation.Struct(rec); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}

	created, err := h.store.Create(c.UserContext(), rec)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

// Update handles PUT /api/<resource>/:id. The body is applied over the stored record,
// so omitted fields keep their values.
func (h *resourceHandlers[T]) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	rec, err := h.store.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	var pinned models.Base
	r, isRecord := any(rec).(models.Record)
	if isRecord {
		pinned = *r.Identity()
	}
	if appErr := parseBody(c, rec); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}
	if isRecord {
		*r.Identity() = pinned
	}
	if appErr := validation.Struct(rec); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}

	updated, err := h.store.Update(c.UserContext(), rec)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": updated})
}

// Delete handles DELETE /api/<resource>/:id
func (h *resourceHandlers[T]) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := h.store.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": h.store.Name() + " deleted successfully",
	})
}

// Toggle returns the handler for PUT /api/<resource>/:id/toggle-*.
func (h *resourceHandlers[T]) Toggle(column string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}

		rec, err := h.store.Toggle(c.UserContext(), id, column)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": rec})
	}
}

// Increment returns the handler for a public counter endpoint.
func (h *resourceHandlers[T]) Increment(column string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}

		rec, err := h.store.Increment(c.UserContext(), id, column)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": rec})
	}
}

// adCounter serves PUT /api/ads/:id/click and /view.
func (s *Server) adCounter(column string) fiber.Handler {
	h := &resourceHandlers[models.Ad]{store: s.resources.Ads}
	return h.Increment(column)
}
