package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope wraps every JSON reply
type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, Envelope{Status: true, Message: message, Data: data})
}

func Failure(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, Envelope{Status: false, Message: message, Data: data})
}

func OK(c echo.Context, message string, data interface{}) error {
	return Success(c, http.StatusOK, message, data)
}

func Created(c echo.Context, message string, data interface{}) error {
	return Success(c, http.StatusCreated, message, data)
}
