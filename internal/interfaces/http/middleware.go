package http

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"fuellock/internal/apperr"
	"fuellock/internal/auth"
)

// AuthMiddleware decodes the bearer token and attaches the claims to the
// request context. Signature verification happened at the gateway already.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := auth.Decode(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return err
		}

		ctx := auth.ToContext(c.Request().Context(), claims)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// requireRoles rejects callers whose role is not in the allow list.
func requireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := auth.FromContext(c.Request().Context())
			if !ok {
				return apperr.MissingToken()
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return apperr.UnauthorizedAction()
		}
	}
}

// LoggingMiddleware logs every request and any handling error.
func LoggingMiddleware(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger.Debug().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("handling request")

			err := next(c)
			if err != nil {
				logger.Err(err).
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Msg("request handling error")
			}
			return err
		}
	}
}
