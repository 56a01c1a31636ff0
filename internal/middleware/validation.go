package middleware

import (
	"quiz-results/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateIDParams checks that the named path parameters hold ULIDs.
// Parameters are checked in the given order.
func (vm *ValidationMiddleware) ValidateIDParams(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		values := make([]string, len(names))
		for i, name := range names {
			values[i] = c.Params(name)
		}
		if errs := vm.validator.ValidateIDs(names, values); len(errs) > 0 {
			return errs // This will be handled by ErrorHandler middleware
		}
		return c.Next()
	}
}

// ValidateUserParam checks the user id path parameter.
func (vm *ValidationMiddleware) ValidateUserParam(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if errs := vm.validator.ValidateUserID(name, c.Params(name)); len(errs) > 0 {
			return errs
		}
		return c.Next()
	}
}
