package http

import (
	"github.com/labstack/echo/v4"

	"fuellock/internal/apperr"
	"fuellock/internal/auth"
)

func (s *Server) GetProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	claims, _ := auth.FromContext(ctx)

	customer, err := s.customers.GetProfile(ctx, claims.UserCode)
	if err != nil {
		return err
	}
	return fetched(c, customer)
}

type ProfileRequest struct {
	Name         string   `json:"name"`
	PlateNumbers []string `json:"plate_numbers"`
}

func (s *Server) CreateProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	claims, _ := auth.FromContext(ctx)

	var request ProfileRequest
	if err := c.Bind(&request); err != nil {
		return apperr.MissingBody()
	}

	customer, err := s.customers.CreateProfile(ctx, claims, request.PlateNumbers)
	if err != nil {
		return err
	}
	return saved(c, customer)
}

func (s *Server) UpdateProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	claims, _ := auth.FromContext(ctx)

	var request ProfileRequest
	if err := c.Bind(&request); err != nil {
		return apperr.MissingBody()
	}

	customer, err := s.customers.UpdateProfile(ctx, claims.UserCode, request.Name, request.PlateNumbers)
	if err != nil {
		return err
	}
	return edited(c, customer)
}
