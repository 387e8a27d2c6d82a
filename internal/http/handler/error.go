package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docmanager/internal/http/middleware"
	"docmanager/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

type errorMapping struct {
	kind    error
	status  int
	code    string
	message string
}

// Checked in order; the first kind matched by errors.Is wins.
var errorMappings = []errorMapping{
	{service.ErrValidation, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid input"},
	{service.ErrAuth, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "resource not found"},
	{service.ErrConflict, fiber.StatusConflict, "CONFLICT", "resource already exists"},
	{service.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE", "resource is in an invalid state"},
	{service.ErrUpload, fiber.StatusBadGateway, "UPLOAD_FAILED", "blob upload failed"},
	{service.ErrDeletion, fiber.StatusInternalServerError, "DELETION_FAILED", "deletion failed"},
}

// mapError translates a service error kind into the standard error response.
// Server side failures are logged with their cause; the client only sees the code.
func mapError(c *fiber.Ctx, err error) error {
	status, code, message := fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			status, code, message = m.status, m.code, m.message
			break
		}
	}

	if status >= fiber.StatusInternalServerError {
		zap.L().Error("request_failed",
			zap.String("request_id", requestIDFromCtx(c)),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	return writeError(c, status, code, message)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return mapError(c, err)
		}

		switch fe.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, fe.Code, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, fe.Code, "FORBIDDEN", "insufficient role")
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fe.Code, "FILE_TOO_LARGE", "request body too large")
		case fiber.StatusTooManyRequests:
			return writeError(c, fe.Code, "RATE_LIMITED", "too many requests")
		default:
			return writeError(c, fe.Code, "INTERNAL_ERROR", "internal server error")
		}
	}
}
