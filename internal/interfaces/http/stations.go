package http

import (
	"github.com/labstack/echo/v4"

	"fuellock/internal/apperr"
	"fuellock/internal/auth"
	"fuellock/internal/entities"
	"fuellock/internal/repository"
)

func (s *Server) GetStationHandler(c echo.Context) error {
	ctx := c.Request().Context()
	claims, _ := auth.FromContext(ctx)

	station, err := s.stations.Get(ctx, claims, c.QueryParam("station_id"))
	if err != nil {
		return err
	}
	return fetched(c, station)
}

func (s *Server) ListStationsHandler(c echo.Context) error {
	stations, err := s.stations.List(c.Request().Context(), repository.ListFilter{
		Keyword:         c.QueryParam("keyword"),
		FuelType:        c.QueryParam("fuel_type"),
		IncludeUnpriced: c.QueryParam("include_unpriced") == "true",
	})
	if err != nil {
		return err
	}
	return fetched(c, stations)
}

type StationRequest struct {
	StationID     string               `json:"station_id"`
	StationCode   string               `json:"station_code"`
	Name          string               `json:"name"`
	Address       string               `json:"address"`
	Coordinates   entities.Coordinates `json:"coordinates"`
	ContactNumber string               `json:"contact_number"`
}

func (s *Server) CreateStationHandler(c echo.Context) error {
	ctx := c.Request().Context()
	claims, _ := auth.FromContext(ctx)

	var request StationRequest
	if err := c.Bind(&request); err != nil {
		return apperr.MissingBody()
	}
	var missing []string
	if request.Name == "" {
		missing = append(missing, "name")
	}
	if request.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return apperr.MissingBody(missing...)
	}

	station, err := s.stations.Create(ctx, claims, &entities.Station{
		StationID:     request.StationID,
		StationCode:   request.StationCode,
		Name:          request.Name,
		Address:       request.Address,
		Coordinates:   request.Coordinates,
		ContactNumber: request.ContactNumber,
	})
	if err != nil {
		return err
	}
	return saved(c, station)
}

func (s *Server) UpdateStationHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var request StationRequest
	if err := c.Bind(&request); err != nil {
		return apperr.MissingBody()
	}
	if request.StationID == "" {
		return apperr.MissingBody("station_id")
	}

	station, err := s.stations.Update(ctx, &entities.Station{
		StationID:     request.StationID,
		StationCode:   request.StationCode,
		Name:          request.Name,
		Address:       request.Address,
		Coordinates:   request.Coordinates,
		ContactNumber: request.ContactNumber,
	})
	if err != nil {
		return err
	}
	return edited(c, station)
}

func (s *Server) DeleteStationHandler(c echo.Context) error {
	ctx := c.Request().Context()
	claims, _ := auth.FromContext(ctx)

	stationCode := c.QueryParam("station_code")
	if stationCode == "" {
		return apperr.MissingQueryParams("station_code")
	}

	if err := s.stations.Delete(ctx, claims, stationCode); err != nil {
		return err
	}
	return deleted(c)
}
