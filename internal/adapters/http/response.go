package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tp-bda/dashboard-ventas/internal/config"
	"github.com/tp-bda/dashboard-ventas/internal/core"
)

const genericServerError = "Error en el servidor"

// Envelope is the body of every JSON response
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Field   string `json:"field,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponder turns service errors into status codes and envelopes
type ErrorResponder struct {
	logger     *logrus.Logger
	production bool
}

// NewErrorResponder creates a responder; in production store failure detail is withheld
func NewErrorResponder(logger *logrus.Logger, production bool) *ErrorResponder {
	return &ErrorResponder{logger: logger, production: production}
}

func ok(c *fiber.Ctx, message string, data any) error {
	return c.JSON(Envelope{Success: true, Message: message, Data: data})
}

func created(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Message: message, Data: data})
}

// okList adds the item count to the envelope
func okList[T any](c *fiber.Ctx, message string, items []T) error {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return c.JSON(Envelope{Success: true, Message: message, Data: items, Count: &n})
}

func statusFor(kind core.ErrorKind) int {
	switch kind {
	case core.KindValidation:
		return fiber.StatusBadRequest
	case core.KindAuth:
		return fiber.StatusUnauthorized
	case core.KindForbidden:
		return fiber.StatusForbidden
	case core.KindNotFound:
		return fiber.StatusNotFound
	case core.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes err as a failure envelope. module and funcName tag the log entry of store failures.
func (r *ErrorResponder) Respond(c *fiber.Ctx, module, funcName string, err error) error {
	kind := core.KindOf(err)
	status := statusFor(kind)

	var coreErr *core.Error
	body := Envelope{Success: false, Message: genericServerError}
	if errors.As(err, &coreErr) {
		body.Message = coreErr.Message
		body.Field = coreErr.Field
	}

	if kind == core.KindStore {
		config.LogError(r.logger, module, funcName, "request failed", map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		}, err)
		if !r.production {
			body.Error = err.Error()
		}
		if coreErr == nil {
			body.Message = genericServerError
		}
	}

	return c.Status(status).JSON(body)
}

// BadBody answers a request whose JSON body could not be decoded
func (r *ErrorResponder) BadBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{Success: false, Message: "Cuerpo de la petición inválido"})
}

// invalidID replaces the generic message of a path id validation error
func invalidID(err error, message string) error {
	field := "id"
	var coreErr *core.Error
	if errors.As(err, &coreErr) && coreErr.Field != "" {
		field = coreErr.Field
	}
	return core.NewValidationError(field, message)
}
