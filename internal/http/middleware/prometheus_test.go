package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMiddleware(t *testing.T) {
	// Use a fresh registry for each test to avoid "duplicate registration" panic
	reg := prometheus.NewRegistry()
	promMiddleware, err := NewPrometheusMiddleware(reg)
	if err != nil {
		t.Fatalf("failed to create middleware: %v", err)
	}

	app := fiber.New()
	app.Use(promMiddleware.Handler())

	app.Get("/documents/:type/:ref", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Get("/error", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "conflict")
	})

	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Counted under the route pattern, not the raw path
	req := httptest.NewRequest("GET", "/documents/inbound/7", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	count := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/documents/:type/:ref", "200"))
	if count != 1 {
		t.Errorf("expected count 1, got %f", count)
	}

	// Handler errors are labeled with the error status
	req = httptest.NewRequest("GET", "/error", nil)
	app.Test(req)

	count = testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/error", "409"))
	if count != 1 {
		t.Errorf("expected count 1 for error route, got %f", count)
	}

	// /metrics itself is excluded
	req = httptest.NewRequest("GET", "/metrics", nil)
	app.Test(req)

	count = testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/metrics", "200"))
	if count != 0 {
		t.Errorf("expected /metrics to be excluded, got %f", count)
	}

	// Latency histogram records one sample per counted request
	if n := testutil.CollectAndCount(promMiddleware.requestDuration); n != 2 {
		t.Errorf("expected 2 duration series, got %d", n)
	}
}
