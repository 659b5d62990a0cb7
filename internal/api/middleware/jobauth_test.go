package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/riskwatch-project/backend/internal/config"
)

func newTestApp(secret string) *fiber.App {
	cfg := &config.Config{}
	cfg.Jobs.TriggerSecret = secret

	app := fiber.New()
	app.Post("/jobs/test", RequireJobSecret(cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, secret string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/jobs/test", nil)
	if secret != "" {
		req.Header.Set(JobSecretHeader, secret)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestRequireJobSecret(t *testing.T) {
	app := newTestApp("hunter2")

	if code := doRequest(t, app, "hunter2"); code != http.StatusOK {
		t.Errorf("valid secret: status %d, want 200", code)
	}
	if code := doRequest(t, app, "wrong"); code != http.StatusUnauthorized {
		t.Errorf("invalid secret: status %d, want 401", code)
	}
	if code := doRequest(t, app, ""); code != http.StatusUnauthorized {
		t.Errorf("missing secret: status %d, want 401", code)
	}
}

func TestRequireJobSecretDisabled(t *testing.T) {
	app := newTestApp("")

	if code := doRequest(t, app, "anything"); code != http.StatusForbidden {
		t.Errorf("unconfigured secret: status %d, want 403", code)
	}
}
