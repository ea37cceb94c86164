package http

import (
	"strconv"

	"github.com/NeuralTrust/banhammer/pkg/domain/breach"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultBreachLimit = 20
	maxBreachLimit     = 100
)

type listBreachesHandler struct {
	logger *logrus.Logger
	repo   breach.Repository
}

func NewListBreachesHandler(logger *logrus.Logger, repo breach.Repository) Handler {
	return &listBreachesHandler{
		logger: logger,
		repo:   repo,
	}
}

func (h *listBreachesHandler) Handle(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMissingToken.Error()})
	}
	limit := defaultBreachLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if val, err := strconv.Atoi(limitStr); err == nil && val > 0 && val <= maxBreachLimit {
			limit = val
		}
	}

	records, err := h.repo.ListByToken(c.Context(), token, limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list breach records")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	if records == nil {
		records = []*breach.Record{}
	}
	return c.Status(fiber.StatusOK).JSON(records)
}
