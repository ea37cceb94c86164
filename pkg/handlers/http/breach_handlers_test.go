package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/breach"
	domain "github.com/NeuralTrust/banhammer/pkg/domain/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBreachRepository struct {
	records   []*breach.Record
	err       error
	lastLimit int
}

func (r *stubBreachRepository) Save(_ context.Context, record *breach.Record) error {
	r.records = append(r.records, record)
	return nil
}

func (r *stubBreachRepository) Get(_ context.Context, id uuid.UUID) (*breach.Record, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.NewNotFoundError("breach record", id)
}

func (r *stubBreachRepository) ListByToken(_ context.Context, token string, limit int) ([]*breach.Record, error) {
	r.lastLimit = limit
	if r.err != nil {
		return nil, r.err
	}
	var out []*breach.Record
	for _, rec := range r.records {
		if rec.Token == token {
			out = append(out, rec)
		}
	}
	return out, nil
}

func newBreachApp(repo breach.Repository) *fiber.App {
	logger, _ := test.NewNullLogger()
	app := fiber.New()
	app.Get("/api/v1/breaches", NewListBreachesHandler(logger, repo).Handle)
	app.Get("/api/v1/breaches/:breach_id", NewGetBreachHandler(logger, repo).Handle)
	return app
}

func get(t *testing.T, app *fiber.App, path string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestListBreachesHandler(t *testing.T) {
	repo := &stubBreachRepository{records: []*breach.Record{
		{ID: uuid.New(), Token: "1.2.3.4", Metric: "login_failed", WindowSeconds: 3600, Limit: 10, CreatedAt: time.Now()},
		{ID: uuid.New(), Token: "5.6.7.8", Metric: "login_failed"},
	}}
	app := newBreachApp(repo)

	status, body := get(t, app, "/api/v1/breaches?token=1.2.3.4&limit=5")
	require.Equal(t, fiber.StatusOK, status)
	var records []breach.Record
	require.NoError(t, json.Unmarshal(body, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "login_failed", records[0].Metric)
	assert.Equal(t, int64(3600), records[0].WindowSeconds)
	assert.Equal(t, 5, repo.lastLimit)

	status, body = get(t, app, "/api/v1/breaches?token=9.9.9.9&limit=1000")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
	assert.Equal(t, defaultBreachLimit, repo.lastLimit)

	status, _ = get(t, app, "/api/v1/breaches")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestListBreachesHandler_RepositoryError(t *testing.T) {
	app := newBreachApp(&stubBreachRepository{err: errors.New("connection refused")})
	status, body := get(t, app, "/api/v1/breaches?token=1.2.3.4")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.NotContains(t, string(body), "connection refused")
}

func TestGetBreachHandler(t *testing.T) {
	id := uuid.New()
	app := newBreachApp(&stubBreachRepository{records: []*breach.Record{{ID: id, Token: "1.2.3.4", Metric: "login_failed"}}})

	status, body := get(t, app, "/api/v1/breaches/"+id.String())
	require.Equal(t, fiber.StatusOK, status)
	var record breach.Record
	require.NoError(t, json.Unmarshal(body, &record))
	assert.Equal(t, id, record.ID)

	status, _ = get(t, app, "/api/v1/breaches/"+uuid.New().String())
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = get(t, app, "/api/v1/breaches/not-a-uuid")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
