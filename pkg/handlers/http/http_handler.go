package http

import (
	"context"

	"github.com/NeuralTrust/banhammer/pkg/app/events"
	"github.com/NeuralTrust/banhammer/pkg/domain/ladder"
	"github.com/NeuralTrust/banhammer/pkg/engine"
	"github.com/gofiber/fiber/v2"
)

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	GetVersionHandler Handler

	// Login
	LoginHandler       Handler
	LoginStatusHandler Handler

	// Metrics
	IncrHandler         Handler
	PeekHandler         Handler
	MetricStatusHandler Handler

	// Breaches, only set when the audit database is enabled.
	ListBreachesHandler Handler
	GetBreachHandler    Handler
}

// RateEngine is what the metric handlers need from the engine.
type RateEngine interface {
	Incr(ctx context.Context, token, metric string, threshold int) (bool, engine.Snapshot, error)
	Peek(ctx context.Context, token, metric string, threshold int) (bool, engine.Snapshot, error)
	Status(ctx context.Context, token, metric string) (engine.Snapshot, error)
	Ladder() *ladder.Ladder
}

// LoginEvents are the hooks called by the login endpoints.
type LoginEvents interface {
	AfterLoginFailed(ctx context.Context, token string) (events.Result, error)
	LoginRestrictedIP(ctx context.Context, token string) (events.Result, error)
	AfterLoginSuccessful(ctx context.Context, token string) (events.Result, error)
	ReportLoginSuccessful(ctx context.Context, token string) (engine.Snapshot, error)
}
