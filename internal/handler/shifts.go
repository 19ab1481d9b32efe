package handler

import (
	"net/http"
	"strconv"

	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ShiftsHandler struct {
	svc     service.ShiftService
	report  service.ShiftReportService
	catalog service.CatalogService
}

func NewShiftsHandler(svc service.ShiftService, report service.ShiftReportService, catalog service.CatalogService) *ShiftsHandler {
	return &ShiftsHandler{svc: svc, report: report, catalog: catalog}
}

// Start godoc
// @Summary Open a shift on a nozzle
// @Tags shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.StartShiftRequest true "Opening data"
// @Success 201 {object} dto.ShiftResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/shifts [post]
func (h *ShiftsHandler) Start(c *gin.Context) {
	var req dto.StartShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor := actorFromClaims(c)

	resp, err := h.svc.Start(c.Request.Context(), actor.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// End godoc
// @Summary Close a shift with its final meter reading
// @Tags shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Param body body dto.EndShiftRequest true "Closing data"
// @Success 200 {object} dto.ShiftResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/shifts/{id}/end [post]
func (h *ShiftsHandler) End(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.EndShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.End(c.Request.Context(), actorFromClaims(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Validate godoc
// @Summary Validate a closed shift (manager only)
// @Tags shifts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Success 200 {object} dto.ShiftResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/shifts/{id}/validate [post]
func (h *ShiftsHandler) Validate(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	actor := actorFromClaims(c)
	resp, err := h.svc.Validate(c.Request.Context(), actor.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ShiftsHandler) Get(c *gin.Context) {
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

func (h *ShiftsHandler) List(c *gin.Context) {
	var filter dto.ShiftFilter
	filter.Status = c.Query("status")
	filter.NozzleID = c.Query("nozzle_id")
	filter.PompisteID = c.Query("pompiste_id")
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Summary godoc
// @Summary Sales totals for a shift, grouped by fuel type and payment method
// @Tags shifts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Success 200 {object} dto.ShiftSummary
// @Failure 404 {object} apierror.APIError
// @Router /v1/shifts/{id}/summary [get]
func (h *ShiftsHandler) Summary(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.report.Summary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anomalies lists the anomalies recorded against one shift.
func (h *ShiftsHandler) Anomalies(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.catalog.ListAnomaliesByShift(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
