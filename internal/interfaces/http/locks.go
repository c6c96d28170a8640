package http

import (
	"github.com/labstack/echo/v4"

	"fuellock/internal/apperr"
	"fuellock/internal/application/services"
	"fuellock/internal/auth"
)

func (s *Server) GetLockHandler(c echo.Context) error {
	bookingID := c.QueryParam("booking_id")
	if bookingID == "" {
		return apperr.MissingQueryParams("booking_id")
	}

	booking, err := s.locks.GetLock(c.Request().Context(), bookingID)
	if err != nil {
		return err
	}
	return fetched(c, booking)
}

type CreateLockRequest struct {
	StationID string `json:"station_id"`
	FuelType  string `json:"fuel_type"`
}

func (s *Server) CreateLockHandler(c echo.Context) error {
	ctx := c.Request().Context()
	claims, _ := auth.FromContext(ctx)

	var request CreateLockRequest
	if err := c.Bind(&request); err != nil {
		return apperr.MissingBody()
	}
	var missing []string
	if request.StationID == "" {
		missing = append(missing, "station_id")
	}
	if request.FuelType == "" {
		missing = append(missing, "fuel_type")
	}
	if len(missing) > 0 {
		return apperr.MissingBody(missing...)
	}

	booking, err := s.locks.CreateLock(ctx, services.CreateLockRequest{
		CustomerID: claims.UserCode,
		StationID:  request.StationID,
		FuelType:   request.FuelType,
	})
	if err != nil {
		return err
	}
	return saved(c, booking)
}

type AcceptLockRequest struct {
	ClaimCode string `json:"claim_code"`
}

func (s *Server) AcceptLockHandler(c echo.Context) error {
	ctx := c.Request().Context()
	claims, _ := auth.FromContext(ctx)

	var request AcceptLockRequest
	if err := c.Bind(&request); err != nil {
		return apperr.MissingBody()
	}
	if request.ClaimCode == "" {
		return apperr.MissingBody("claim_code")
	}

	booking, err := s.locks.AcceptLock(ctx, claims, request.ClaimCode)
	if err != nil {
		return err
	}
	return edited(c, booking)
}

type CancelLockRequest struct {
	BookingID string `json:"booking_id"`
}

func (s *Server) CancelLockHandler(c echo.Context) error {
	ctx := c.Request().Context()
	claims, _ := auth.FromContext(ctx)

	var request CancelLockRequest
	if err := c.Bind(&request); err != nil {
		return apperr.MissingBody()
	}
	if request.BookingID == "" {
		return apperr.MissingBody("booking_id")
	}

	booking, err := s.locks.CancelLock(ctx, claims.UserCode, request.BookingID)
	if err != nil {
		return err
	}
	return edited(c, booking)
}

func (s *Server) DeleteLockHandler(c echo.Context) error {
	ctx := c.Request().Context()
	claims, _ := auth.FromContext(ctx)

	bookingID := c.QueryParam("booking_id")
	if bookingID == "" {
		return apperr.MissingQueryParams("booking_id")
	}

	if err := s.locks.DeleteLock(ctx, claims.UserCode, bookingID); err != nil {
		return err
	}
	return deleted(c)
}
