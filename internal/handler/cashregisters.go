package handler

import (
	"net/http"
	"strconv"

	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type CashRegistersHandler struct{ svc service.CashRegisterService }

func NewCashRegistersHandler(svc service.CashRegisterService) *CashRegistersHandler {
	return &CashRegistersHandler{svc: svc}
}

// Close godoc
// @Summary Reconcile a closed shift's till against its sales
// @Tags cash-registers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Param body body dto.CloseCashRegisterRequest true "Declared amounts per payment method"
// @Success 201 {object} dto.CashRegisterResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/shifts/{id}/cash-register [post]
func (h *CashRegistersHandler) Close(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CloseCashRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), actorFromClaims(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetByShift godoc
// @Summary Get the reconciliation record of a shift
// @Tags cash-registers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Success 200 {object} dto.CashRegisterResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/shifts/{id}/cash-register [get]
func (h *CashRegistersHandler) GetByShift(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByShift(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CashRegistersHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
