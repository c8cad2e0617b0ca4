package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/JMicallef9/translation-api/internal/globaltime"
	"github.com/JMicallef9/translation-api/internal/history"
	"github.com/JMicallef9/translation-api/internal/objectstore"
	"github.com/JMicallef9/translation-api/internal/translation"
)

const (
	maxRequestBodyBytes = 1 << 20
	invalidBodyMessage  = "Invalid request body."
)

type translationsResponse struct {
	Translations []history.Record `json:"translations"`
	NextPage     string           `json:"next_page,omitempty"`
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translation.Request
	if err := decodeJSONBody(c, &req); err != nil {
		s.logger.Warn().Err(err).Msg("malformed translate request body")
		return detail(c, http.StatusUnprocessableEntity, invalidBodyMessage)
	}

	record, err := s.service.Translate(c.Request().Context(), req)
	if err != nil {
		return detail(c, translateStatus(err), translation.ClientMessage(err))
	}
	return c.JSON(http.StatusCreated, record)
}

func (s *Server) handleLanguages(c echo.Context) error {
	return c.JSON(http.StatusCreated, languagesResponse{Languages: s.service.Catalog().Names()})
}

func (s *Server) handleTranslations(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), history.DefaultPageSize, 1, history.MaxPageSize)
	if err != nil {
		return listError(c, http.StatusUnprocessableEntity, "Invalid limit: "+err.Error())
	}

	page, err := s.service.History(c.Request().Context(), limit, c.QueryParam("cursor"))
	switch {
	case err == nil:
	case errors.Is(err, history.ErrNoTranslations):
		return message(c, http.StatusOK, "No translations found")
	case errors.Is(err, history.ErrInvalidCursor):
		return listError(c, http.StatusUnprocessableEntity, "Invalid cursor.")
	default:
		s.logger.Error().Err(err).Msg("failed to list translations")
		return listError(c, http.StatusInternalServerError, "Failed to list objects: "+storageDetail(err))
	}

	return c.JSON(http.StatusOK, translationsResponse{
		Translations: page.Records,
		NextPage:     page.NextCursor,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	resp := healthResponse{
		Status:  "ok",
		Service: serviceName,
		Time:    globaltime.UTC(),
		Storage: "ok",
	}
	if err := s.service.Check(c.Request().Context()); err != nil {
		s.logger.Warn().Err(err).Msg("storage health check failed")
		resp.Status = "degraded"
		resp.Storage = storageDetail(err)
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func translateStatus(err error) int {
	switch {
	case errors.Is(err, translation.ErrInvalidLanguageCode),
		errors.Is(err, translation.ErrEmptyInput),
		errors.Is(err, translation.ErrLanguageDetectionFailed),
		errors.Is(err, translation.ErrTranslationNotRecognized):
		return http.StatusUnprocessableEntity
	case errors.Is(err, translation.ErrTranslationServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, translation.ErrTranslationServiceTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// storageDetail prefers the backend's own operation message.
func storageDetail(err error) string {
	var opErr *objectstore.OperationError
	if errors.As(err, &opErr) {
		return opErr.Error()
	}
	var storageErr *history.StorageError
	if errors.As(err, &storageErr) && storageErr.Err != nil {
		return storageErr.Err.Error()
	}
	return err.Error()
}

func decodeJSONBody(c echo.Context, dst any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRequestBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxRequestBodyBytes {
		return fmt.Errorf("body exceeds %d bytes", maxRequestBodyBytes)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("body is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if decoder.More() {
		return fmt.Errorf("body contains trailing content")
	}
	return nil
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	// Min and Max skip zero values, so Required rejects an explicit 0.
	if err := validation.Validate(value, validation.Required, validation.Min(minValue), validation.Max(maxValue)); err != nil {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}
