package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/config"
	"github.com/tpo-cell/backend/internal/domain"
)

const (
	issuer   = "tpo-cell"
	audience = "tpo-cell-api"
)

var (
	ErrInvalidClaims = errors.New("invalid token claims")
	ErrUnknownRole   = errors.New("unknown role in token")
	ErrInactiveUser  = errors.New("user is inactive")
)

// Claims identify a staff member. Subject carries the user id and ID the
// token id used for revocation.
type Claims struct {
	Role domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// UserID is only valid on claims returned by ParseAccessToken.
func (c *Claims) UserID() uuid.UUID {
	id, _ := uuid.Parse(c.Subject)
	return id
}

func (c *Claims) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}

func knownRole(r domain.UserRole) bool {
	return r == domain.RoleAdmin || r == domain.RoleCoordinator
}

type AccessToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// RefreshToken is handed to the client as Token; only Hash is stored.
type RefreshToken struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
}

type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	parser        *jwt.Parser
}

func NewJWTService(cfg *config.Config) *JWTService {
	return &JWTService{
		accessSecret:  []byte(cfg.JWT.AccessSecret),
		refreshSecret: []byte(cfg.JWT.RefreshSecret),
		accessExpiry:  cfg.JWT.AccessExpiry,
		refreshExpiry: cfg.JWT.RefreshExpiry,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
			jwt.WithIssuedAt(),
		),
	}
}

// IssueAccessToken signs a token for an active user of a known role.
func (j *JWTService) IssueAccessToken(user *domain.User) (AccessToken, error) {
	if !user.IsActive {
		return AccessToken{}, ErrInactiveUser
	}
	if !knownRole(user.Role) {
		return AccessToken{}, fmt.Errorf("%w: %q", ErrUnknownRole, user.Role)
	}

	now := time.Now()
	out := AccessToken{ID: uuid.NewString(), ExpiresAt: now.Add(j.accessExpiry)}
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        out.ID,
			Subject:   user.ID.String(),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(out.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.accessSecret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	out.Token = signed
	return out, nil
}

// ParseAccessToken verifies signature, issuer, audience and expiry, and
// rejects tokens whose subject or role this service would never issue.
func (j *JWTService) ParseAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := j.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return j.accessSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := uuid.Parse(claims.Subject); err != nil || claims.ID == "" {
		return nil, ErrInvalidClaims
	}
	if !knownRole(claims.Role) {
		return nil, ErrUnknownRole
	}
	return claims, nil
}

func (j *JWTService) IssueRefreshToken() (RefreshToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return RefreshToken{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	return RefreshToken{
		Token:     token,
		Hash:      j.HashRefreshToken(token),
		ExpiresAt: time.Now().Add(j.refreshExpiry),
	}, nil
}

// HashRefreshToken is an HMAC of token keyed on the refresh secret.
func (j *JWTService) HashRefreshToken(token string) string {
	mac := hmac.New(sha256.New, j.refreshSecret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func (j *JWTService) AccessTTL() time.Duration {
	return j.accessExpiry
}

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
