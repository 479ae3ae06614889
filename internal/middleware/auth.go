package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/auth"
	"github.com/tpo-cell/backend/internal/dto"
	"github.com/tpo-cell/backend/internal/repository"
)

type AuthMiddleware struct {
	jwtService *auth.JWTService
	authRepo   *repository.AuthRepository
}

func NewAuthMiddleware(jwtService *auth.JWTService, authRepo *repository.AuthRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		authRepo:   authRepo,
	}
}

// Required authentication
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
				"UNAUTHORIZED",
				"Missing access token",
			))
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
				"UNAUTHORIZED",
				"Malformed authorization header",
			))
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := m.jwtService.ParseAccessToken(tokenString)
		if err != nil {
			if auth.IsExpired(err) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
					"TOKEN_EXPIRED",
					"Access token has expired",
				))
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
				"INVALID_TOKEN",
				"Invalid access token",
			))
		}

		revoked, err := m.authRepo.IsTokenBlacklisted(claims.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
				"INTERNAL_ERROR",
				"Failed to verify token",
			))
		}
		if revoked {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
				"TOKEN_REVOKED",
				"Access token has been revoked",
			))
		}

		c.Locals("claims", claims)

		return c.Next()
	}
}

// Admin only
func (m *AuthMiddleware) AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := GetClaims(c)
		if claims == nil || !claims.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse(
				"FORBIDDEN",
				"Admin access required",
			))
		}
		return c.Next()
	}
}

// GetClaims returns the verified token claims of the current request.
func GetClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals("claims").(*auth.Claims)
	return claims
}

// Get current user ID from context
func GetUserID(c *fiber.Ctx) *uuid.UUID {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	id := claims.UserID()
	return &id
}

