package httpapi

import (
	"time"

	"github.com/labstack/echo/v4"
)

type detailResponse struct {
	Detail string `json:"detail"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type languagesResponse struct {
	Languages map[string]string `json:"languages"`
}

type healthResponse struct {
	Status  string    `json:"status"`
	Service string    `json:"service"`
	Time    time.Time `json:"time"`
	Storage string    `json:"storage"`
}

// detail writes the error shape used by the translate endpoint.
func detail(c echo.Context, code int, message string) error {
	return c.JSON(code, detailResponse{Detail: message})
}

// listError writes the error shape used by the listing endpoint.
func listError(c echo.Context, code int, message string) error {
	return c.JSON(code, errorResponse{Error: message})
}

func message(c echo.Context, code int, text string) error {
	return c.JSON(code, messageResponse{Message: text})
}
