package http

import (
	"context"

	"github.com/NeuralTrust/banhammer/pkg/engine"
	"github.com/NeuralTrust/banhammer/pkg/handlers/http/request"
	"github.com/NeuralTrust/banhammer/pkg/handlers/http/response"
	"github.com/NeuralTrust/banhammer/pkg/server/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type checkFunc func(ctx context.Context, token, metric string, threshold int) (bool, engine.Snapshot, error)

type metricCheckHandler struct {
	logger    *logrus.Logger
	engine    RateEngine
	operation string
}

// NewIncrHandler records an event and checks one threshold.
func NewIncrHandler(logger *logrus.Logger, engine RateEngine) Handler {
	return &metricCheckHandler{logger: logger, engine: engine, operation: "incr"}
}

// NewPeekHandler checks one threshold without recording.
func NewPeekHandler(logger *logrus.Logger, engine RateEngine) Handler {
	return &metricCheckHandler{logger: logger, engine: engine, operation: "peek"}
}

func (h *metricCheckHandler) Handle(c *fiber.Ctx) error {
	metric := c.Params("metric")

	var req request.MetricCheckRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			h.logger.WithError(err).Debug("failed to bind request")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload.Error()})
		}
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Token == "" {
		req.Token = middleware.TokenFromContext(c)
	}

	check := checkFunc(h.engine.Incr)
	if h.operation == "peek" {
		check = h.engine.Peek
	}
	passed, snapshot, err := check(c.Context(), req.Token, metric, req.Threshold)
	if err != nil {
		return handleEngineError(c, h.logger, err)
	}

	out := response.CheckOutput{
		Passed:   passed,
		Rates:    snapshot,
		Breaches: []response.ThresholdReport{},
	}
	if !passed {
		rung, err := h.engine.Ladder().Threshold(metric, req.Threshold)
		if err != nil {
			return handleEngineError(c, h.logger, err)
		}
		out.Breaches = append(out.Breaches, response.NewThresholdReport(rung, snapshot[req.Threshold]))
	}
	return c.Status(fiber.StatusOK).JSON(out)
}
