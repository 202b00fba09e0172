package idempotency

import (
	"context"
	"fmt"
	"time"

	"erp-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const Header = "Idempotency-Key"

const maxKeyLength = 128

// Middleware claims the Idempotency-Key of POST requests before the handler
// runs. A second request with the same key, user and path gets 409. Keys of
// failed requests are released so the client can retry.
func Middleware(store KeyStore, ttl time.Duration, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}
		raw := c.Get(Header)
		if raw == "" {
			return c.Next()
		}
		if len(raw) > maxKeyLength {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key is too long")
		}

		userID, _ := c.Locals(auth.CtxUserIDKey).(string)
		key := fmt.Sprintf("%s:%s:%s", userID, c.Path(), raw)

		ok, err := store.Claim(c.UserContext(), key, ttl)
		if err != nil {
			// the write itself is still guarded by the database
			log.Warn("idempotency store unavailable", zap.Error(err))
			return c.Next()
		}
		if !ok {
			return fiber.NewError(fiber.StatusConflict, "request with this Idempotency-Key was already processed")
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if rerr := store.Release(context.Background(), key); rerr != nil {
				log.Warn("idempotency key release failed", zap.String("key", key), zap.Error(rerr))
			}
		}
		return err
	}
}
