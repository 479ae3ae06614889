package handler

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/auth"
	"github.com/tpo-cell/backend/internal/domain"
	"github.com/tpo-cell/backend/internal/dto"
	"github.com/tpo-cell/backend/internal/middleware"
	"github.com/tpo-cell/backend/internal/repository"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	userRepo *repository.UserRepository
	authRepo *repository.AuthRepository
	jwt      *auth.JWTService
}

func NewAuthHandler(userRepo *repository.UserRepository, authRepo *repository.AuthRepository, jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		authRepo: authRepo,
		jwt:      jwt,
	}
}

func setRefreshCookie(c *fiber.Ctx, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    value,
		Path:     "/api/v1/auth",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: "Strict",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Invalid request body",
		))
	}
	if details := dto.Validate(req); details != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Invalid request body", details...,
		))
	}

	user, err := h.userRepo.FindByUsernameOrEmail(req.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"INVALID_CREDENTIALS", "Wrong username or password",
		))
	}

	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse(
			"ACCOUNT_DISABLED", "This account has been disabled",
		))
	}

	access, err := h.jwt.IssueAccessToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
			"INTERNAL_ERROR", "Failed to issue token",
		))
	}

	refresh, err := h.jwt.IssueRefreshToken()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
			"INTERNAL_ERROR", "Failed to issue token",
		))
	}
	ipAddress := c.IP()
	rt := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		FamilyID:  uuid.New(),
		DeviceInfo: domain.JSONB{
			"user_agent": c.Get("User-Agent"),
		},
		IPAddress: &ipAddress,
		ExpiresAt: refresh.ExpiresAt,
	}
	if err := h.authRepo.CreateRefreshToken(rt); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
			"INTERNAL_ERROR", "Failed to store token",
		))
	}

	if err := h.userRepo.TouchLastLogin(user.ID); err != nil {
		log.Printf("[Auth] Failed to record last login for %s: %v", user.Username, err)
	}

	setRefreshCookie(c, refresh.Token, refresh.ExpiresAt)

	return c.JSON(dto.SuccessResponse(dto.LoginResponse{
		AccessToken: access.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.jwt.AccessTTL().Seconds()),
		User: dto.UserBriefDTO{
			ID:       user.ID,
			Username: user.Username,
			Name:     user.Name,
			Role:     string(user.Role),
		},
	}, ""))
}

// Refresh rotates the refresh token. Presenting a revoked token revokes
// its whole family.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookie)
	if refreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"TOKEN_EXPIRED", "Missing refresh token, please log in again",
		))
	}

	storedToken, err := h.authRepo.FindRefreshTokenByHash(h.jwt.HashRefreshToken(refreshToken))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"TOKEN_EXPIRED", "Invalid refresh token, please log in again",
		))
	}

	if storedToken.IsRevoked {
		if err := h.authRepo.RevokeTokenFamily(storedToken.FamilyID, "token_reuse_detected"); err != nil {
			log.Printf("[Auth] Failed to revoke token family %s: %v", storedToken.FamilyID, err)
		}
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"TOKEN_REUSE_DETECTED", "Refresh token reuse detected, all sessions were ended",
		))
	}

	if time.Now().After(storedToken.ExpiresAt) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"TOKEN_EXPIRED", "Refresh token has expired, please log in again",
		))
	}

	user, err := h.userRepo.FindByID(storedToken.UserID)
	if err != nil || !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"UNAUTHORIZED", "User not found or inactive",
		))
	}

	if err := h.authRepo.RevokeRefreshToken(storedToken.ID, "rotated"); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
			"INTERNAL_ERROR", "Failed to rotate token",
		))
	}
	_ = h.authRepo.UpdateLastUsed(storedToken.ID)

	access, err := h.jwt.IssueAccessToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
			"INTERNAL_ERROR", "Failed to issue token",
		))
	}

	refresh, err := h.jwt.IssueRefreshToken()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
			"INTERNAL_ERROR", "Failed to issue token",
		))
	}
	rt := &domain.RefreshToken{
		UserID:     user.ID,
		TokenHash:  refresh.Hash,
		FamilyID:   storedToken.FamilyID,
		DeviceInfo: storedToken.DeviceInfo,
		IPAddress:  storedToken.IPAddress,
		ExpiresAt:  refresh.ExpiresAt,
	}
	if err := h.authRepo.CreateRefreshToken(rt); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
			"INTERNAL_ERROR", "Failed to store token",
		))
	}

	setRefreshCookie(c, refresh.Token, refresh.ExpiresAt)

	return c.JSON(dto.SuccessResponse(dto.RefreshResponse{
		AccessToken: access.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.jwt.AccessTTL().Seconds()),
	}, ""))
}

// Logout revokes the refresh cookie and blacklists the current access token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if refreshToken := c.Cookies(refreshCookie); refreshToken != "" {
		storedToken, err := h.authRepo.FindRefreshTokenByHash(h.jwt.HashRefreshToken(refreshToken))
		if err == nil {
			_ = h.authRepo.RevokeRefreshToken(storedToken.ID, "logout")
		}
	}

	if claims := middleware.GetClaims(c); claims != nil {
		userID := claims.UserID()
		if err := h.authRepo.BlacklistToken(claims.ID, &userID, claims.ExpiresAt.Time, "logout"); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
				"INTERNAL_ERROR", "Failed to revoke access token",
			))
		}
	}

	setRefreshCookie(c, "", time.Now().Add(-time.Hour))

	return c.JSON(dto.SuccessResponse(nil, "Logged out"))
}
