package serverutils

import (
	"ai-organizer-be/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts AppError values returned from controllers
// into the error envelope. Unknown errors become opaque 500s.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperrors.As(err); ok {
			return ctx.Status(appErr.Status).JSON(ErrorResponse(appErr.Code, appErr.Message))
		}

		if fiberErr, ok := err.(*fiber.Error); ok {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(apperrors.CodeInternal, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(apperrors.CodeInternal, "internal server error"))
	}
}
