package handler

import (
	"net/http"
	"strconv"

	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the operational reference data: nozzles, payment
// methods and the manager's anomaly review list.
type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ── Nozzles ──────────────────────────────────────────────────────────────────

func (h *CatalogHandler) CreateNozzle(c *gin.Context) {
	var req dto.CreateNozzleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateNozzle(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) GetNozzle(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetNozzle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) ListNozzles(c *gin.Context) {
	resp, err := h.svc.ListNozzles(c.Request.Context(), c.Query("station_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) SetNozzleActive(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid JSON"})
		return
	}
	if err := h.svc.SetNozzleActive(c.Request.Context(), id, req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Payment methods ──────────────────────────────────────────────────────────

func (h *CatalogHandler) CreatePaymentMethod(c *gin.Context) {
	var req dto.CreatePaymentMethodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreatePaymentMethod(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) ListPaymentMethods(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active_only", "true"))
	resp, err := h.svc.ListPaymentMethods(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) SetPaymentMethodActive(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid JSON"})
		return
	}
	if err := h.svc.SetPaymentMethodActive(c.Request.Context(), id, req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Anomalies ────────────────────────────────────────────────────────────────

// ListAnomalies godoc
// @Summary Paginated anomaly review list (manager only)
// @Tags anomalies
// @Produce json
// @Security BearerAuth
// @Param kind query string false "Filter by kind (index_drift, long_duration, cash_variance)"
// @Success 200 {object} map[string]interface{}
// @Router /v1/anomalies [get]
func (h *CatalogHandler) ListAnomalies(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, total, err := h.svc.ListAnomalies(c.Request.Context(), c.Query("kind"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "total": total, "page": page, "limit": limit})
}
