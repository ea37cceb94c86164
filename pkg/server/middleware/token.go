package middleware

import (
	"net"
	"strings"

	"github.com/NeuralTrust/banhammer/pkg/common"
	"github.com/gofiber/fiber/v2"
)

type tokenMiddleware struct{}

// NewTokenMiddleware stores the caller's address as the rate limiting token.
// The address comes from c.IP(), so a forwarding header only counts when the
// app sets ProxyHeader and the peer is one of its TrustedProxies.
func NewTokenMiddleware() Middleware {
	return &tokenMiddleware{}
}

func (m *tokenMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(common.TokenContextKey, clientIP(c))
		return c.Next()
	}
}

// TokenFromContext returns the token set by the token middleware, falling
// back to the client address when the middleware did not run.
func TokenFromContext(c *fiber.Ctx) string {
	if token, ok := c.Locals(common.TokenContextKey).(string); ok && token != "" {
		return token
	}
	return clientIP(c)
}

func clientIP(c *fiber.Ctx) string {
	ip := strings.TrimSpace(strings.Split(c.IP(), ",")[0])
	if net.ParseIP(ip) != nil {
		return ip
	}
	return c.Context().RemoteIP().String()
}
