package handler

import (
	"net/http"

	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Record godoc
// @Summary Record a fuel sale on an open shift
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RecordSaleRequest true "Sale with payment split"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sales [post]
func (h *SalesHandler) Record(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Record(c.Request.Context(), actorFromClaims(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListByShift godoc
// @Summary List the sales recorded on a shift
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Success 200 {array} dto.SaleResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/shifts/{id}/sales [get]
func (h *SalesHandler) ListByShift(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListByShift(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
