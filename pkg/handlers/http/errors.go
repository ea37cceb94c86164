package http

import (
	"errors"

	domain "github.com/NeuralTrust/banhammer/pkg/domain/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidJsonPayload = errors.New("invalid JSON payload")
	ErrMissingToken       = errors.New("token is required")
)

// handleEngineError maps engine errors to HTTP statuses. Configuration
// errors are the caller's fault; anything else is unexpected since the engine
// fails open on store errors.
func handleEngineError(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownMetric):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case domain.IsConfigurationError(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.WithError(err).Error("rate engine call failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
