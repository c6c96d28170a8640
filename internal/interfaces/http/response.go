package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform response body. The four canonical messages and the
// fetch/save/edit/delete status split are part of the API contract the
// mobile app parses.
type Envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

const (
	messageFetched = "Data successfully fetched."
	messageSaved   = "Data successfully saved."
	messageEdited  = "Data successfully edited."
	messageDeleted = "Data successfully deleted."
)

func fetched(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: messageFetched, Data: data})
}

func saved(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: messageSaved, Data: data})
}

func edited(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: messageEdited, Data: data})
}

func deleted(c echo.Context) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: messageDeleted})
}
