package http

import (
	"crypto/subtle"
	"strconv"

	"github.com/NeuralTrust/banhammer/pkg/app/events"
	"github.com/NeuralTrust/banhammer/pkg/config"
	"github.com/NeuralTrust/banhammer/pkg/domain/ladder"
	"github.com/NeuralTrust/banhammer/pkg/handlers/http/request"
	"github.com/NeuralTrust/banhammer/pkg/handlers/http/response"
	"github.com/NeuralTrust/banhammer/pkg/infra/actions"
	"github.com/NeuralTrust/banhammer/pkg/server/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type loginHandler struct {
	logger     *logrus.Logger
	events     LoginEvents
	ladder     *ladder.Ladder
	blocker    actions.Blocker
	secret     string
	restricted map[string]struct{}
}

// NewLoginHandler serves the sample login endpoint that feeds the
// login_failed and login_successful metrics.
func NewLoginHandler(
	logger *logrus.Logger,
	events LoginEvents,
	l *ladder.Ladder,
	blocker actions.Blocker,
	cfg config.LoginConfig,
) Handler {
	restricted := make(map[string]struct{}, len(cfg.RestrictedIPs))
	for _, ip := range cfg.RestrictedIPs {
		restricted[ip] = struct{}{}
	}
	return &loginHandler{
		logger:     logger,
		events:     events,
		ladder:     l,
		blocker:    blocker,
		secret:     cfg.Secret,
		restricted: restricted,
	}
}

func (h *loginHandler) Handle(c *fiber.Ctx) error {
	token := middleware.TokenFromContext(c)
	ctx := c.Context()

	if h.blocker != nil {
		blocked, err := h.blocker.IsBlocked(ctx, token)
		if err != nil {
			h.logger.WithError(err).WithField("token", token).Warn("failed to read block flag")
		}
		if blocked {
			left, err := h.blocker.Remaining(ctx, token)
			if err != nil {
				h.logger.WithError(err).WithField("token", token).Warn("failed to read block ttl")
			}
			if left > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(int64(left.Seconds()), 10))
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many failed logins"})
		}
	}

	req, err := request.ParseLoginRequest(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload.Error()})
	}

	success := h.secret != "" && subtle.ConstantTimeCompare([]byte(req.Value), []byte(h.secret)) == 1
	var results []events.Result
	if success {
		res, err := h.events.AfterLoginSuccessful(ctx, token)
		if err != nil {
			return handleEngineError(c, h.logger, err)
		}
		results = append(results, res)
	} else {
		res, err := h.events.AfterLoginFailed(ctx, token)
		if err != nil {
			return handleEngineError(c, h.logger, err)
		}
		results = append(results, res)
		if _, ok := h.restricted[token]; ok {
			res, err := h.events.LoginRestrictedIP(ctx, token)
			if err != nil {
				return handleEngineError(c, h.logger, err)
			}
			results = append(results, res)
		}
	}

	out := response.LoginOutput{Success: success, Passed: true, Breaches: []response.ThresholdReport{}}
	for _, res := range results {
		if res.Passed {
			continue
		}
		out.Passed = false
		rung, err := h.ladder.Threshold(res.Metric, res.Threshold)
		if err != nil {
			return handleEngineError(c, h.logger, err)
		}
		out.Breaches = append(out.Breaches, response.NewThresholdReport(rung, res.Snapshot[res.Threshold]))
	}
	return c.Status(fiber.StatusOK).JSON(out)
}
