package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/hirelens-labs/screener-api/internal/config"
	"github.com/hirelens-labs/screener-api/internal/handler"
)

func TestHealthCheckReportsProvider(t *testing.T) {
	cases := []struct {
		name     string
		cfg      config.Config
		provider string
	}{
		{name: "fallback", cfg: config.Config{AppName: "Screener API", AppEnv: "test", UseFallback: true}, provider: "fallback"},
		{name: "openai", cfg: config.Config{AppName: "Screener API", AppEnv: "test"}, provider: "openai"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/api/v1/health", handler.HealthCheck(tc.cfg))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			var response struct {
				Success bool                   `json:"success"`
				Data    handler.HealthResponse `json:"data"`
			}
			decodeResponse(t, resp, &response)

			require.True(t, response.Success)
			require.Equal(t, "ok", response.Data.Status)
			require.Equal(t, tc.provider, response.Data.Provider)
		})
	}
}
