package serverutils

import "github.com/gofiber/fiber/v2"

const IdempotencyHeader = "X-Idempotency-Key"

// IdempotencyKey resolves the caller-supplied key. The body value wins when
// both are present; the semantics are identical either way.
func IdempotencyKey(ctx *fiber.Ctx, bodyKey string) string {
	if bodyKey != "" {
		return bodyKey
	}
	return ctx.Get(IdempotencyHeader)
}
