package middleware

import (
	"fmt"
	"strings"

	"scrap-collect/constants"
	"scrap-collect/logger"
	userModel "scrap-collect/models/user"
	"scrap-collect/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// IsAuthenticated verifies the bearer token and stores the Caller in locals
func IsAuthenticated(verifier *TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			return unauthorized(c, "Missing or malformed authorization header")
		}

		claims, err := verifier.VerifyJWT(strings.TrimSpace(tokenString))
		if err != nil {
			logger.Debug(fmt.Sprintf("JWT verification failed: %v", err))
			return unauthorized(c, "Invalid or expired token")
		}

		caller, err := callerFromClaims(claims)
		if err != nil {
			return unauthorized(c, err.Error())
		}

		c.Locals(constants.LocalsClaims, claims)
		c.Locals(constants.LocalsCaller, caller)
		return c.Next()
	}
}

// RequireRoles must be chained after IsAuthenticated.
func RequireRoles(roles ...userModel.Role) fiber.Handler {
	allowed := make(map[userModel.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		caller, ok := CallerFromContext(c)
		if !ok {
			return unauthorized(c, "Authentication required")
		}
		if !allowed[caller.Role] {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Message: "Your role is not permitted to perform this action",
				Status:  fiber.StatusForbidden,
			})
		}
		return c.Next()
	}
}

// CallerFromContext returns the identity placed by IsAuthenticated
func CallerFromContext(c *fiber.Ctx) (userModel.Caller, bool) {
	caller, ok := c.Locals(constants.LocalsCaller).(userModel.Caller)
	return caller, ok
}

func callerFromClaims(claims jwt.MapClaims) (userModel.Caller, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return userModel.Caller{}, fmt.Errorf("token has no subject")
	}

	roleClaim, _ := claims["role"].(string)
	role := userModel.Role(strings.ToUpper(roleClaim))
	if !role.IsValid() {
		return userModel.Caller{}, fmt.Errorf("token has no valid role")
	}
	return userModel.Caller{ID: sub, Role: role}, nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
		Message: message,
		Status:  fiber.StatusUnauthorized,
	})
}
