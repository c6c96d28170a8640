package http

import (
	"github.com/labstack/echo/v4"

	"fuellock/internal/apperr"
)

type CreateDealerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) CreateDealerHandler(c echo.Context) error {
	var request CreateDealerRequest
	if err := c.Bind(&request); err != nil {
		return apperr.MissingBody()
	}
	var missing []string
	if request.Name == "" {
		missing = append(missing, "name")
	}
	if request.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return apperr.MissingBody(missing...)
	}

	dealer, err := s.dealers.CreateDealer(c.Request().Context(), request.Name, request.Email)
	if err != nil {
		return err
	}
	return saved(c, dealer)
}
