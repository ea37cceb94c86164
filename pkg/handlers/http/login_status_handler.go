package http

import (
	"github.com/NeuralTrust/banhammer/pkg/app/events"
	"github.com/NeuralTrust/banhammer/pkg/domain/ladder"
	"github.com/NeuralTrust/banhammer/pkg/handlers/http/response"
	"github.com/NeuralTrust/banhammer/pkg/server/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type loginStatusHandler struct {
	logger *logrus.Logger
	events LoginEvents
	ladder *ladder.Ladder
}

// NewLoginStatusHandler reports the login_successful counts of ?ip=, or of
// the caller when ip is omitted.
func NewLoginStatusHandler(logger *logrus.Logger, events LoginEvents, l *ladder.Ladder) Handler {
	return &loginStatusHandler{logger: logger, events: events, ladder: l}
}

func (h *loginStatusHandler) Handle(c *fiber.Ctx) error {
	token := c.Query("ip")
	if token == "" {
		token = middleware.TokenFromContext(c)
	}

	snapshot, err := h.events.ReportLoginSuccessful(c.Context(), token)
	if err != nil {
		return handleEngineError(c, h.logger, err)
	}
	rungs, err := h.ladder.Thresholds(events.MetricLoginSuccessful)
	if err != nil {
		return handleEngineError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(response.StatusOutput{
		Token:      token,
		Metric:     events.MetricLoginSuccessful,
		Rates:      snapshot,
		Thresholds: response.NewThresholdReports(rungs, snapshot),
	})
}
