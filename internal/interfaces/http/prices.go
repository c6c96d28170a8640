package http

import (
	"time"

	"github.com/labstack/echo/v4"

	"fuellock/internal/apperr"
	"fuellock/internal/application/services"
)

func (s *Server) GetPricesHandler(c echo.Context) error {
	stationID := c.QueryParam("station_id")
	if stationID == "" {
		return apperr.MissingQueryParams("station_id")
	}

	prices, err := s.prices.GetPrices(c.Request().Context(), stationID)
	if err != nil {
		return err
	}
	return fetched(c, prices)
}

type PriceScheduleRequest struct {
	StationID       string    `json:"station_id"`
	RuleName        string    `json:"rule_name"`
	FuelType        string    `json:"fuel_type"`
	Price           float64   `json:"price"`
	EffectivityDate time.Time `json:"effectivity_date"`
}

func (r PriceScheduleRequest) missingFields() []string {
	var missing []string
	if r.StationID == "" {
		missing = append(missing, "station_id")
	}
	if r.FuelType == "" {
		missing = append(missing, "fuel_type")
	}
	if r.Price <= 0 {
		missing = append(missing, "price")
	}
	if r.EffectivityDate.IsZero() {
		missing = append(missing, "effectivity_date")
	}
	return missing
}

func (s *Server) CreatePriceScheduleHandler(c echo.Context) error {
	var request PriceScheduleRequest
	if err := c.Bind(&request); err != nil {
		return apperr.MissingBody()
	}
	if missing := request.missingFields(); len(missing) > 0 {
		return apperr.MissingBody(missing...)
	}

	schedule, err := s.prices.ScheduleCreate(c.Request().Context(), services.ScheduleRequest{
		StationID:       request.StationID,
		FuelType:        request.FuelType,
		Price:           request.Price,
		EffectivityDate: request.EffectivityDate,
	})
	if err != nil {
		return err
	}
	return saved(c, schedule)
}

func (s *Server) UpdatePriceScheduleHandler(c echo.Context) error {
	var request PriceScheduleRequest
	if err := c.Bind(&request); err != nil {
		return apperr.MissingBody()
	}
	if request.RuleName == "" {
		return apperr.MissingBody("rule_name")
	}
	if missing := request.missingFields(); len(missing) > 0 {
		return apperr.MissingBody(missing...)
	}

	schedule, err := s.prices.ScheduleUpdate(c.Request().Context(), request.RuleName, services.ScheduleRequest{
		StationID:       request.StationID,
		FuelType:        request.FuelType,
		Price:           request.Price,
		EffectivityDate: request.EffectivityDate,
	})
	if err != nil {
		return err
	}
	return edited(c, schedule)
}

func (s *Server) DeletePriceScheduleHandler(c echo.Context) error {
	ruleName := c.QueryParam("rule_name")
	stationID := c.QueryParam("station_id")
	var missing []string
	if ruleName == "" {
		missing = append(missing, "rule_name")
	}
	if stationID == "" {
		missing = append(missing, "station_id")
	}
	if len(missing) > 0 {
		return apperr.MissingQueryParams(missing...)
	}

	if err := s.prices.ScheduleDelete(c.Request().Context(), stationID, ruleName); err != nil {
		return err
	}
	return deleted(c)
}
