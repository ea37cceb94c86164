package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenApp(cfg fiber.Config) *fiber.App {
	app := fiber.New(cfg)
	app.Use(NewTokenMiddleware().Middleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(TokenFromContext(c))
	})
	return app
}

// app.Test connections come from 0.0.0.0.
func TestTokenMiddleware(t *testing.T) {
	trusted := fiber.Config{
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0"},
		EnableIPValidation:      true,
	}
	untrusted := fiber.Config{
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"10.0.0.0/8"},
		EnableIPValidation:      true,
	}

	tests := []struct {
		name    string
		cfg     fiber.Config
		headers map[string]string
		want    string
	}{
		{name: "trusted proxy header", cfg: trusted, headers: map[string]string{"X-Forwarded-For": "10.0.0.2"}, want: "10.0.0.2"},
		{name: "trusted proxy list", cfg: trusted, headers: map[string]string{"X-Forwarded-For": "10.0.0.2, 172.16.0.1"}, want: "10.0.0.2"},
		{name: "trusted proxy ipv6", cfg: trusted, headers: map[string]string{"X-Forwarded-For": "2001:db8::1"}, want: "2001:db8::1"},
		{name: "trusted proxy invalid header", cfg: trusted, headers: map[string]string{"X-Forwarded-For": "unknown"}, want: "0.0.0.0"},
		{name: "untrusted peer header ignored", cfg: untrusted, headers: map[string]string{"X-Forwarded-For": "10.0.0.2"}, want: "0.0.0.0"},
		{name: "no proxy header configured", headers: map[string]string{"X-Real-IP": "10.0.0.1", "X-Forwarded-For": "10.0.0.2"}, want: "0.0.0.0"},
		{name: "remote address", want: "0.0.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTokenApp(tt.cfg)
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestPanicRecoverMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(NewPanicRecoverMiddleware(logger).Middleware())
	app.Get("/", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "HTTP server panic recovered", hook.LastEntry().Message)
}
