package middleware

import (
	"strings"

	"hirelink/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// Actor roles carried in the JWT "role" claim. The identity collaborator
// issues the token; the core trusts its subject and role.
const (
	RoleUser     = "user"
	RoleEmployer = "employer"
)

// AuthRequired is a middleware that enforces authentication for protected routes.
// On success it stores actorID and actorRole in Fiber locals.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid authorization header format",
		})
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid token claims",
		})
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid token structure - missing subject",
		})
	}

	role, _ := claims["role"].(string)
	if role != RoleUser && role != RoleEmployer {
		role = RoleUser
	}

	c.Locals("actorID", sub)
	c.Locals("actorRole", role)

	return c.Next()
}

// EmployerRequired rejects requests whose token does not carry the employer role.
// Must run after AuthRequired.
func EmployerRequired(c *fiber.Ctx) error {
	if role, _ := c.Locals("actorRole").(string); role != RoleEmployer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Employer account required",
		})
	}
	return c.Next()
}
