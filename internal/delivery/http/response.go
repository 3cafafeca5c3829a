package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the envelope of every JSON body served by the API. Data is
// omitted on errors, Message on most successes.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(c echo.Context, code int, status, message string, data any) error {
	return c.JSON(code, Response{Status: status, Message: message, Data: data})
}

// SuccessResponse wraps data in a 200 envelope
func SuccessResponse(c echo.Context, data any) error {
	return respond(c, http.StatusOK, statusSuccess, "", data)
}

// SuccessMessageResponse is SuccessResponse with a human readable message
func SuccessMessageResponse(c echo.Context, message string, data any) error {
	return respond(c, http.StatusOK, statusSuccess, message, data)
}

// CreatedResponse wraps a newly created resource
func CreatedResponse(c echo.Context, data any) error {
	return respond(c, http.StatusCreated, statusSuccess, "", data)
}

// ErrorResponse writes an error envelope with the given status
func ErrorResponse(c echo.Context, code int, message string) error {
	return respond(c, code, statusError, message, nil)
}
