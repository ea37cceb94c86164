package http

import (
	"github.com/NeuralTrust/banhammer/pkg/handlers/http/response"
	"github.com/NeuralTrust/banhammer/pkg/server/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type metricStatusHandler struct {
	logger *logrus.Logger
	engine RateEngine
}

func NewMetricStatusHandler(logger *logrus.Logger, engine RateEngine) Handler {
	return &metricStatusHandler{logger: logger, engine: engine}
}

func (h *metricStatusHandler) Handle(c *fiber.Ctx) error {
	metric := c.Params("metric")
	token := c.Query("token")
	if token == "" {
		token = middleware.TokenFromContext(c)
	}

	snapshot, err := h.engine.Status(c.Context(), token, metric)
	if err != nil {
		return handleEngineError(c, h.logger, err)
	}
	rungs, err := h.engine.Ladder().Thresholds(metric)
	if err != nil {
		return handleEngineError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(response.StatusOutput{
		Token:      token,
		Metric:     metric,
		Rates:      snapshot,
		Thresholds: response.NewThresholdReports(rungs, snapshot),
	})
}
