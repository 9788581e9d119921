package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/pkg/errtrack"
	"github.com/wanderguide/wanderguide/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, routing_failed, internal_error, ...
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID. Server-side
// failures are also reported to the error tracker.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	if status >= fiber.StatusInternalServerError {
		errtrack.CaptureMessage(message, map[string]string{
			"code":       code,
			"method":     c.Method(),
			"route":      c.Route().Path,
			"request_id": reqID,
		})
	}
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errUnprocessable returns a 422 error with the given code.
func errUnprocessable(c *fiber.Ctx, code, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, code, msg)
}

// errBadGateway returns a 502 error with the given code.
func errBadGateway(c *fiber.Ctx, code, msg string) error {
	return newError(c, fiber.StatusBadGateway, code, msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// mapError translates a use case error into its HTTP response. notFound is
// the message used when the resource does not exist.
func mapError(c *fiber.Ctx, err error, notFound string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, notFound)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidProfile):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNoRoute):
		return errUnprocessable(c, "routing_failed", "no route could be found between the itinerary stops")
	case errors.Is(err, domain.ErrRoutingUnavailable):
		return errBadGateway(c, "routing_unavailable", "the routing service could not be reached")
	case errors.Is(err, domain.ErrUnavailable):
		return errUnavailable(c, err.Error())
	}
	logging.FromContext(c.UserContext()).Error("request failed",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return errInternal(c, err.Error())
}
