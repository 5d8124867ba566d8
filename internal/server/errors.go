package server

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/studyquest/studyquest/internal/session"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ErrGeneratorUnavailable is returned by /api/generate when no model
// provider is configured.
var ErrGeneratorUnavailable = errors.New("question generation is not configured")

// ErrorHandler maps handler errors to JSON error responses.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, code := classify(err)

		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
		} else {
			log.Warn("request rejected",
				zap.String("path", c.Path()),
				zap.String("code", code),
				zap.Error(err))
		}

		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "Internal server error"
		}
		return c.Status(status).JSON(ErrorResponse{Code: code, Message: msg, Status: status})
	}
}

func classify(err error) (int, string) {
	var fiberErr *fiber.Error
	switch {
	case errors.Is(err, session.ErrIndexOutOfRange):
		return http.StatusNotFound, "INDEX_OUT_OF_RANGE"
	case errors.Is(err, session.ErrNoQuestions):
		return http.StatusConflict, "NO_QUESTIONS"
	case errors.Is(err, session.ErrInvalidImport):
		return http.StatusBadRequest, "INVALID_IMPORT"
	case errors.Is(err, session.ErrInvalidQuestion):
		return http.StatusBadRequest, "INVALID_QUESTION"
	case errors.Is(err, ErrGeneratorUnavailable):
		return http.StatusServiceUnavailable, "GENERATION_UNAVAILABLE"
	case errors.As(err, &fiberErr):
		return fiberErr.Code, "HTTP_ERROR"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
