// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.WSConnected()
		m.WSDisconnected()
		m.ForumEvent("created")
		m.BroadcastDropped()
		m.Denied("Forbidden")
	})
	assert.Nil(t, m.Registry())

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMetrics_Recorders(t *testing.T) {
	m := New()
	m.WSConnected()
	m.WSConnected()
	m.WSDisconnected()
	m.ForumEvent("created")
	m.BroadcastDropped()
	m.Denied("Forbidden")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.wsConnections))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.forumEvents.WithLabelValues("created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.broadcastDrops))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.authzDenials.WithLabelValues("Forbidden")))
}

func TestMetrics_HandlerAndMiddleware(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", m.Handler())

	_, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `campuscare_http_requests_total{method="GET",route="/ping",status="200"} 1`)
}

func TestProvideMetrics(t *testing.T) {
	assert.Nil(t, ProvideMetrics(&MetricsConfig{}))
	assert.NotNil(t, ProvideMetrics(&MetricsConfig{Enable: true}))

	s := ProvideMetricsServer(&MetricsConfig{Enable: true}, New())
	assert.NoError(t, s.Start())
	assert.NoError(t, s.Stop(context.Background()))
}
