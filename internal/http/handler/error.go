package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/encoder"
	"portfolioapi/internal/http/middleware"
	"portfolioapi/internal/model"
	"portfolioapi/internal/service"
	"portfolioapi/internal/storage"
	"portfolioapi/internal/validator"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_TYPE", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeTitledError(c, status, code, "", message)
}

func writeTitledError(c *fiber.Ctx, status int, code, title, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Title:   title,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps a portfolio service error onto the error taxonomy.
// Validation messages are user-facing and passed through; everything else gets a fixed message.
func writeServiceError(c *fiber.Ctx, err error) error {
	title := ""
	message := ""
	var opErr *service.OperationError
	if errors.As(err, &opErr) {
		title = opErr.Title()
		message = opErr.Description()
	}

	switch {
	case errors.Is(err, validator.ErrInvalidType):
		return writeTitledError(c, fiber.StatusUnsupportedMediaType, "INVALID_TYPE", title, message)
	case errors.Is(err, validator.ErrTooLarge):
		return writeTitledError(c, fiber.StatusRequestEntityTooLarge, "TOO_LARGE", title, message)
	case errors.Is(err, validator.ErrInvalidSize):
		return writeTitledError(c, fiber.StatusBadRequest, "INVALID_SIZE", title, message)
	case errors.Is(err, encoder.ErrEncodingFailure):
		return writeTitledError(c, fiber.StatusUnprocessableEntity, "ENCODING_FAILURE", title, "the uploaded file could not be read")
	case errors.Is(err, storage.ErrStorageUnavailable):
		return writeTitledError(c, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", title, "storage unavailable")
	case errors.Is(err, model.ErrUnknownCategory):
		return writeTitledError(c, fiber.StatusBadRequest, "INVALID_CATEGORY", title, "category must be one of profile, resume, project")
	case errors.Is(err, service.ErrFileNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
	default:
		return writeTitledError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", title, "internal server error")
	}
}

// BusyResponse answers a mutating request made while an upload is in flight.
func BusyResponse(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusConflict, "BUSY", "an upload is in progress, try again when it finishes")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "BODY_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
