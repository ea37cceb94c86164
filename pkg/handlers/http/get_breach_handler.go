package http

import (
	"github.com/NeuralTrust/banhammer/pkg/domain/breach"
	domain "github.com/NeuralTrust/banhammer/pkg/domain/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type getBreachHandler struct {
	logger *logrus.Logger
	repo   breach.Repository
}

func NewGetBreachHandler(logger *logrus.Logger, repo breach.Repository) Handler {
	return &getBreachHandler{
		logger: logger,
		repo:   repo,
	}
}

func (h *getBreachHandler) Handle(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("breach_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid breach ID"})
	}

	record, err := h.repo.Get(c.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("failed to get breach record")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusOK).JSON(record)
}
