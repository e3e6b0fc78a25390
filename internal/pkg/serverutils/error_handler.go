package serverutils

import (
	"errors"

	"exam-prep-be/pkg/generation"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var (
		fiberErr   *fiber.Error
		concurrent *generation.ConcurrentGenerationError
		deficit    *generation.GenerationDeficitError
		store      *generation.StoreUnavailableError
		validation *ValidationError
	)
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &concurrent):
		return fiber.StatusConflict
	case errors.As(err, &deficit):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, generation.ErrTopicNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &store):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
