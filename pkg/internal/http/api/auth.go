package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/openballot/openballot/pkg/internal/security"
)

const principalKey = "principalId"

// authenticated gates owner-only routes: it verifies the bearer token
// through the auth gateway before handler dispatch and stores the
// resulting principal id in the request context. Every gateway failure
// maps to an unauthenticated response.
func authenticated(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, security.ErrAuthMissing.Error())
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	userID, err := gateway.Verify(token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	c.Locals(principalKey, userID)
	return c.Next()
}

func principalID(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals(principalKey).(uint)
	if !ok {
		return 0, errors.New("request reached an owner-only handler without a principal")
	}
	return id, nil
}
