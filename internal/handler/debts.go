package handler

import (
	"net/http"
	"strconv"

	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type DebtsHandler struct{ svc service.DebtService }

func NewDebtsHandler(svc service.DebtService) *DebtsHandler { return &DebtsHandler{svc: svc} }

// Create godoc
// @Summary Create a manual pompiste debt (manager only)
// @Tags debts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateDebtRequest true "Debt data"
// @Success 201 {object} dto.DebtResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/debts [post]
func (h *DebtsHandler) Create(c *gin.Context) {
	var req dto.CreateDebtRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), actorFromClaims(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AddPayment godoc
// @Summary Record a repayment against a debt (manager only)
// @Tags debts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Debt ID"
// @Param body body dto.AddDebtPaymentRequest true "Repayment"
// @Success 200 {object} dto.DebtResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/debts/{id}/payments [post]
func (h *DebtsHandler) AddPayment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AddDebtPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddPayment(c.Request.Context(), actorFromClaims(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary Cancel an unsettled debt (manager only)
// @Tags debts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Debt ID"
// @Param body body dto.CancelDebtRequest true "Cancellation reason"
// @Success 200 {object} dto.CancelDebtResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/debts/{id}/cancel [post]
func (h *DebtsHandler) Cancel(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelDebtRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), actorFromClaims(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DebtsHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DebtsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.List(c.Request.Context(), c.Query("pompiste_id"), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
