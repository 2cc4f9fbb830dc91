package contract

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories"
	"github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/lifecycle"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/timeline"
)

// Handler handles contract routes
type Handler struct {
	contracts repositories.ContractRepository
	audits    repositories.EventAuditRepository
	timelines *timeline.Service
	validate  *validator.Validate
	logger    ectologger.Logger
}

// NewHandler creates a new contract handler
func NewHandler(
	contracts repositories.ContractRepository,
	audits repositories.EventAuditRepository,
	timelines *timeline.Service,
	logger ectologger.Logger,
) *Handler {
	return &Handler{
		contracts: contracts,
		audits:    audits,
		timelines: timelines,
		validate:  validator.New(),
		logger:    logger,
	}
}

// RegisterRoutes registers contract routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/contract", h.Create)
	g.GET("/contract/:contract_number", h.Get)
	g.DELETE("/contract/:contract_number", h.Delete)
	g.GET("/contract/:contract_number/contract_timeline", h.Timeline)
	g.GET("/contract/:contract_number/events", h.ListEvents)
}

// Create registers a new contract with its enabled components
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateContractRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusUnprocessableEntity, "invalid contract payload: %v", err)
	}
	for _, component := range req.Components {
		if !lifecycle.IsValidComponentType(component) {
			return httperror.NewHTTPErrorf(http.StatusUnprocessableEntity, "unknown component type: %s", component)
		}
	}

	ctx = context.SetContractNumber(ctx, req.ContractNumber)
	h.logger.WithContext(ctx).WithField("contract_number", req.ContractNumber).Info("Creating contract")

	contract, err := h.contracts.Create(ctx, req)
	if err != nil {
		return err
	}

	metrics.ContractsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, models.ContractResponse{Contract: *contract})
}

// Get returns a contract by its number
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	contractNumber := c.Param("contract_number")

	contract, err := h.contracts.GetByNumber(ctx, contractNumber)
	if err != nil {
		return err
	}
	if contract == nil {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "Contract %s not found.", contractNumber)
	}

	return c.JSON(http.StatusOK, models.ContractResponse{Contract: *contract})
}

// Delete removes a contract and cascades to its component states and audit
// trail
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	contractNumber := c.Param("contract_number")

	contract, err := h.contracts.GetByNumber(ctx, contractNumber)
	if err != nil {
		return err
	}
	if contract == nil {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "Contract %s not found.", contractNumber)
	}

	if err := h.contracts.Delete(ctx, contract.ID); err != nil {
		return err
	}

	h.logger.WithContext(ctx).WithField("contract_number", contractNumber).Info("Contract deleted")
	metrics.ContractsDeletedTotal.Inc()
	return c.JSON(http.StatusOK, models.DeleteContractResponse{
		Detail: "Contract " + contractNumber + " deleted successfully",
	})
}

// Timeline returns the derived component lifecycle view for a contract
func (h *Handler) Timeline(c echo.Context) error {
	ctx := c.Request().Context()
	contractNumber := c.Param("contract_number")

	view, err := h.timelines.GetTimeline(ctx, contractNumber)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

// ListEvents returns the audit trail for a contract in submission order
func (h *Handler) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()
	contractNumber := c.Param("contract_number")

	contract, err := h.contracts.GetByNumber(ctx, contractNumber)
	if err != nil {
		return err
	}
	if contract == nil {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "Contract %s not found.", contractNumber)
	}

	items, err := h.audits.ListByContract(ctx, contract.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.EventAuditListResponse{
		ContractNumber: contractNumber,
		Items:          items,
		TotalCount:     len(items),
	})
}
