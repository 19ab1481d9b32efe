package handler

import (
	"net/http"
	"time"

	"github.com/anass1h/Station-sub000/internal/apierror"
	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PricesHandler struct{ svc service.PriceService }

func NewPricesHandler(svc service.PriceService) *PricesHandler { return &PricesHandler{svc: svc} }

// Set godoc
// @Summary Set a new unit price for a fuel type at a station (admin only)
// @Tags prices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SetPriceRequest true "New price"
// @Success 201 {object} dto.PriceResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/prices [post]
func (h *PricesHandler) Set(c *gin.Context) {
	var req dto.SetPriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor := actorFromClaims(c)
	resp, err := h.svc.SetPrice(c.Request.Context(), actor.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Active godoc
// @Summary Current unit price for a (station, fuel type) pair
// @Tags prices
// @Produce json
// @Security BearerAuth
// @Param station_id query string true "Station ID"
// @Param fuel_type_id query string true "Fuel type ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} apierror.APIError
// @Router /v1/prices/active [get]
func (h *PricesHandler) Active(c *gin.Context) {
	stationID, err := uuid.Parse(c.Query("station_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid station_id"))
		return
	}
	fuelTypeID, err := uuid.Parse(c.Query("fuel_type_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid fuel_type_id"))
		return
	}
	price, err := h.svc.ActivePrice(c.Request.Context(), stationID, fuelTypeID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"station_id":   stationID.String(),
		"fuel_type_id": fuelTypeID.String(),
		"unit_price":   price,
	})
}

func (h *PricesHandler) History(c *gin.Context) {
	stationID, err := uuid.Parse(c.Query("station_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid station_id"))
		return
	}
	fuelTypeID, err := uuid.Parse(c.Query("fuel_type_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid fuel_type_id"))
		return
	}
	resp, err := h.svc.History(c.Request.Context(), stationID, fuelTypeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
