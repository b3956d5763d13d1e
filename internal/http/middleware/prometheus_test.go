package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricsApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/documents/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "missing" {
			return fiber.NewError(fiber.StatusNotFound, "document not found")
		}
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/documents/:id/download-token", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	app.Delete("/documents/:id/permissions/:userId", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, m, reg
}

// durationSamples returns the observation count of the latency histogram for one route.
func durationSamples(t *testing.T, reg *prometheus.Registry, method, path string) uint64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "http_request_duration_seconds" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["method"] == method && labels["path"] == path {
				return metric.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func TestPrometheusMiddleware(t *testing.T) {
	app, m, reg := newMetricsApp(t)

	for range 2 {
		resp, err := app.Test(httptest.NewRequest("POST", "/documents/7c1d/download-token", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requestCount.WithLabelValues("POST", "/documents/:id/download-token", "201")))
	assert.Equal(t, uint64(2), durationSamples(t, reg, "POST", "/documents/:id/download-token"))

	t.Run("route pattern is the path label", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("DELETE", "/documents/7c1d/permissions/u-42", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

		assert.Equal(t, float64(1), testutil.ToFloat64(m.requestCount.WithLabelValues("DELETE", "/documents/:id/permissions/:userId", "204")))
		assert.Equal(t, uint64(1), durationSamples(t, reg, "DELETE", "/documents/:id/permissions/:userId"))
		assert.Zero(t, durationSamples(t, reg, "DELETE", "/documents/7c1d/permissions/u-42"))
	})

	t.Run("handler error status is recorded", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/documents/missing", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		assert.Equal(t, float64(1), testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/documents/:id", "404")))
		assert.Equal(t, uint64(1), durationSamples(t, reg, "GET", "/documents/:id"))
	})
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	app, m, reg := newMetricsApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Zero(t, testutil.CollectAndCount(m.requestCount))
	assert.Zero(t, testutil.CollectAndCount(m.requestDuration))
	assert.Zero(t, durationSamples(t, reg, "GET", "/metrics"))
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
