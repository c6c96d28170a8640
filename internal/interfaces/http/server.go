package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"fuellock/internal/apperr"
	"fuellock/internal/application/services"
	"fuellock/internal/auth"
)

type Server struct {
	e    *echo.Echo
	addr string

	locks     *services.LocksService
	prices    *services.PricesService
	stations  *services.StationsService
	dealers   *services.DealersService
	customers *services.CustomersService
}

func NewServer(
	e *echo.Echo,
	addr string,
	locks *services.LocksService,
	prices *services.PricesService,
	stations *services.StationsService,
	dealers *services.DealersService,
	customers *services.CustomersService,
	logger zerolog.Logger,
	routerIsRunning func() bool,
) *Server {
	srv := &Server{
		e:         e,
		addr:      addr,
		locks:     locks,
		prices:    prices,
		stations:  stations,
		dealers:   dealers,
		customers: customers,
	}

	e.HTTPErrorHandler = errorHandler
	e.Use(LoggingMiddleware(logger))

	authed := e.Group("", AuthMiddleware)

	authed.GET("/lock", srv.GetLockHandler)
	authed.POST("/lock", srv.CreateLockHandler, requireRoles(auth.RoleCustomer))
	authed.DELETE("/lock", srv.DeleteLockHandler, requireRoles(auth.RoleCustomer))
	authed.POST("/lock/accept", srv.AcceptLockHandler, requireRoles(auth.RoleDealer, auth.RoleEmployee))
	authed.POST("/lock/cancel", srv.CancelLockHandler, requireRoles(auth.RoleCustomer))

	authed.GET("/station", srv.GetStationHandler)
	authed.POST("/station", srv.CreateStationHandler, requireRoles(auth.RoleDealer))
	authed.PUT("/station", srv.UpdateStationHandler, requireRoles(auth.RoleDealer))
	authed.DELETE("/station", srv.DeleteStationHandler, requireRoles(auth.RoleDealer))
	e.GET("/station/all", srv.ListStationsHandler)

	authed.GET("/station/prices", srv.GetPricesHandler)
	authed.POST("/station/prices", srv.CreatePriceScheduleHandler, requireRoles(auth.RoleDealer, auth.RoleEmployee))
	authed.PUT("/station/prices", srv.UpdatePriceScheduleHandler, requireRoles(auth.RoleDealer, auth.RoleEmployee))
	authed.DELETE("/station/prices", srv.DeletePriceScheduleHandler, requireRoles(auth.RoleDealer, auth.RoleEmployee))

	authed.POST("/dealer", srv.CreateDealerHandler)

	authed.GET("/profile", srv.GetProfileHandler, requireRoles(auth.RoleCustomer))
	authed.POST("/profile", srv.CreateProfileHandler, requireRoles(auth.RoleCustomer))
	authed.PUT("/profile", srv.UpdateProfileHandler, requireRoles(auth.RoleCustomer))

	e.GET("/health", func(c echo.Context) error {
		if !routerIsRunning() {
			return c.String(http.StatusServiceUnavailable, "router is not running")
		}
		return c.String(http.StatusOK, "ok")
	})

	return srv
}

// errorHandler converts every error to the error envelope. Taxonomy errors
// keep their code and message; anything else degrades to GenericError.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusMethodNotAllowed {
			appErr = apperr.InvalidHttpMethod(c.Request().Method)
		} else {
			appErr = apperr.Generic()
		}
	}

	status := http.StatusBadRequest
	if appErr.StatusCode != 0 {
		status = appErr.StatusCode
	}

	_ = c.JSON(status, struct {
		Success   bool           `json:"success"`
		ErrorCode apperr.Code    `json:"errorCode"`
		Message   string         `json:"message"`
		Meta      map[string]any `json:"meta,omitempty"`
	}{
		Success:   false,
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
		Meta:      appErr.Meta,
	})
}

func (s *Server) Start() error {
	err := s.e.Start(s.addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
