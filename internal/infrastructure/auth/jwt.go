// Package auth validates the bearer tokens the user directory issues.
// The platform does not mint refresh tokens; sessions are owned by the
// directory and the core only verifies what it is handed.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/infrastructure/config"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims carries the directory identity plus the profile scopes the role
// resolver needs.
type Claims struct {
	jwt.RegisteredClaims
	TenantID        string   `json:"tenant_id"`
	UserID          string   `json:"user_id"`
	Email           string   `json:"email"`
	Groups          []string `json:"groups,omitempty"`
	OrganizationIDs []string `json:"organization_ids,omitempty"`
	PartnerID       string   `json:"partner_id,omitempty"`
}

// JWTService signs and validates actor tokens.
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
		issuer:     cfg.Issuer,
	}
}

// TokenInput contains input for token generation.
type TokenInput struct {
	TenantID        uuid.UUID
	UserID          uuid.UUID
	Email           string
	Groups          []string
	OrganizationIDs []uuid.UUID
	PartnerID       *uuid.UUID
}

// Generate creates a signed actor token.
func (s *JWTService) Generate(input TokenInput) (string, error) {
	now := time.Now()
	orgIDs := make([]string, len(input.OrganizationIDs))
	for i, id := range input.OrganizationIDs {
		orgIDs[i] = id.String()
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID:        input.TenantID.String(),
		UserID:          input.UserID.String(),
		Email:           input.Email,
		Groups:          input.Groups,
		OrganizationIDs: orgIDs,
	}
	if input.PartnerID != nil {
		claims.PartnerID = input.PartnerID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and verifies a token, returning its claims.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TenantID == "" {
		return nil, ErrMissingTenantID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

// GetTenantUUID extracts and parses the tenant ID from claims.
func (c *Claims) GetTenantUUID() (uuid.UUID, error) {
	return uuid.Parse(c.TenantID)
}

// GetUserUUID extracts and parses the user ID from claims.
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetOrganizationUUIDs parses the staff-membership organization ids.
func (c *Claims) GetOrganizationUUIDs() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(c.OrganizationIDs))
	for _, raw := range c.OrganizationIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetPartnerUUID parses the optional partner scope.
func (c *Claims) GetPartnerUUID() (*uuid.UUID, error) {
	if c.PartnerID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(c.PartnerID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
