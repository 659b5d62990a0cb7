/**
 * @description
 * Job trigger authentication middleware.
 * On-demand job endpoints are guarded by a shared secret supplied in the
 * X-Job-Secret header. If no secret is configured, triggers are disabled
 * entirely rather than left open.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/config
 */

package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/riskwatch-project/backend/internal/config"
)

// JobSecretHeader carries the shared secret for on-demand job triggers
const JobSecretHeader = "X-Job-Secret"

// RequireJobSecret guards job trigger routes with the configured shared secret
func RequireJobSecret(cfg *config.Config) fiber.Handler {
	secret := cfg.Jobs.TriggerSecret

	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Job triggers are disabled (JOB_TRIGGER_SECRET not set)",
			})
		}

		provided := c.Get(JobSecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid job secret",
			})
		}

		return c.Next()
	}
}
