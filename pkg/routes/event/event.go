package event

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/ingestion"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Handler handles lifecycle event routes
type Handler struct {
	processor *ingestion.Processor
	validate  *validator.Validate
	logger    ectologger.Logger
}

// NewHandler creates a new event handler
func NewHandler(processor *ingestion.Processor, logger ectologger.Logger) *Handler {
	return &Handler{
		processor: processor,
		validate:  validator.New(),
		logger:    logger,
	}
}

// RegisterRoutes registers event routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/event", h.Process)
}

// Process decides one inbound lifecycle event. Domain rejections still
// return 200; only malformed payloads and unknown event types are errors.
func (h *Handler) Process(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.EventRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusUnprocessableEntity, "invalid event payload: %v", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusUnprocessableEntity, "invalid event payload: %v", err)
	}
	if req.Date.IsZero() || req.CreatedAt.IsZero() {
		return httperror.NewHTTPError(http.StatusUnprocessableEntity, "invalid event payload: date and created_at are required")
	}

	ctx = context.SetContractNumber(ctx, req.ContractNumber)

	result, err := h.processor.Process(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
