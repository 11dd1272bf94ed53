package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"harvest-go/internal/service"
	"harvest-go/pkg/action"
	"harvest-go/pkg/fetcher"
	"harvest-go/pkg/harvester"
	"harvest-go/pkg/logger"
	"harvest-go/pkg/storage"
)

// ActionSpec is the wire form of an extraction action.
type ActionSpec struct {
	Terms []interface{}          `json:"terms"`
	Attrs map[string]interface{} `json:"attrs"`
}

// HarvestRequest asks for one harvest run.
type HarvestRequest struct {
	URLs    []string     `json:"urls"`
	Actions []ActionSpec `json:"actions"`
}

// HarvestResponse returns the run report plus the matches per action
// identity.
type HarvestResponse struct {
	Report  *harvester.Report                `json:"report"`
	Results map[string][]storage.PageMatches `json:"results"`
}

// Handler wires the harvest service into fiber routes.
type Handler struct {
	svc service.HarvestService
	log *logger.Logger
}

func New(svc service.HarvestService) *Handler {
	return &Handler{
		svc: svc,
		log: logger.GetLogger().WithField("component", "handler"),
	}
}

// Register mounts all routes on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/healthz", h.health)

	api := app.Group("/api/v1")
	api.Post("/harvest", h.harvest)
	api.Post("/actions/identity", h.actionIdentity)
	api.Get("/results/:identity", h.results)
}

func (h *Handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) harvest(c *fiber.Ctx) error {
	var req HarvestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.URLs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "urls must not be empty")
	}
	if len(req.Actions) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "actions must not be empty")
	}

	actions := make([]*action.Action, len(req.Actions))
	identities := make([]uint64, len(req.Actions))
	for i, spec := range req.Actions {
		act := action.New(spec.Terms, spec.Attrs)
		id, err := act.Identity()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		actions[i] = act
		identities[i] = id
	}

	report, err := h.svc.Harvest(c.Context(), req.URLs, actions)
	if err != nil {
		if errors.Is(err, fetcher.ErrInvalidWorkerCount) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		h.log.WithError(err).Error("Harvest run failed")
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	results := make(map[string][]storage.PageMatches, len(identities))
	for _, id := range identities {
		if pages := h.svc.Results(id); pages != nil {
			results[harvester.IdentityKey(id)] = pages
		}
	}

	return c.JSON(HarvestResponse{Report: report, Results: results})
}

func (h *Handler) actionIdentity(c *fiber.Ctx) error {
	var spec ActionSpec
	if err := c.BodyParser(&spec); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id, err := action.New(spec.Terms, spec.Attrs).Identity()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{"identity": harvester.IdentityKey(id)})
}

func (h *Handler) results(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("identity"), 16, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "identity must be a hex hash")
	}

	pages := h.svc.Results(id)
	if pages == nil {
		return fiber.NewError(fiber.StatusNotFound, "no results for identity")
	}
	return c.JSON(fiber.Map{
		"identity": harvester.IdentityKey(id),
		"results":  pages,
	})
}
