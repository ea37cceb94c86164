package router

import (
	"errors"

	handlers "github.com/NeuralTrust/banhammer/pkg/handlers/http"
	"github.com/NeuralTrust/banhammer/pkg/server/middleware"
	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidHandlerTransport = errors.New("invalid handler transport")
)

type apiRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    *handlers.HandlerTransport
}

func NewAPIRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport *handlers.HandlerTransport,
) ServerRouter {
	return &apiRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	t := r.handlerTransport
	if t == nil || t.LoginHandler == nil || t.IncrHandler == nil || t.PeekHandler == nil ||
		t.MetricStatusHandler == nil || t.LoginStatusHandler == nil || t.GetVersionHandler == nil {
		return ErrInvalidHandlerTransport
	}

	if r.middlewareTransport != nil {
		if mws := r.middlewareTransport.GetMiddlewares(); len(mws) > 0 {
			router.Use(mws...)
		}
	}

	router.Get("/version", t.GetVersionHandler.Handle)

	router.Post("/login", t.LoginHandler.Handle)
	router.Get("/status", t.LoginStatusHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		metrics := v1.Group("/metrics/:metric")
		{
			metrics.Post("/incr", t.IncrHandler.Handle)
			metrics.Post("/peek", t.PeekHandler.Handle)
			metrics.Get("/status", t.MetricStatusHandler.Handle)
		}
		if t.ListBreachesHandler != nil && t.GetBreachHandler != nil {
			v1.Get("/breaches", t.ListBreachesHandler.Handle)
			v1.Get("/breaches/:breach_id", t.GetBreachHandler.Handle)
		}
	}
	return nil
}
