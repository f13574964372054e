package auth

import (
	"errors"
	"time"

	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/freightcore/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// Claims carries the caller identity an access token grants
type Claims struct {
	jwt.RegisteredClaims
	UserID   string       `json:"user_id"`
	OrgID    string       `json:"org_id,omitempty"`
	BranchID string       `json:"branch_id,omitempty"`
	Username string       `json:"username"`
	Role     tenancy.Role `json:"role"`
}

// Principal converts the claims into the identity used by authorization.
// A super_admin token may carry no organization.
func (c *Claims) Principal() (tenancy.Principal, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return tenancy.Principal{}, ErrInvalidClaims
	}
	p := tenancy.Principal{UserID: userID, Role: c.Role}
	if c.OrgID != "" {
		if p.OrgID, err = uuid.Parse(c.OrgID); err != nil {
			return tenancy.Principal{}, ErrInvalidClaims
		}
	}
	if c.BranchID != "" {
		if p.BranchID, err = uuid.Parse(c.BranchID); err != nil {
			return tenancy.Principal{}, ErrInvalidClaims
		}
	}
	if !p.Valid() {
		return tenancy.Principal{}, ErrInvalidClaims
	}
	return p, nil
}

// AccessToken is a signed token with its expiry
type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"`
}

// JWTService issues and validates HS256 access tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// Issue signs an access token for the principal
func (s *JWTService) Issue(p tenancy.Principal, username string) (*AccessToken, error) {
	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   p.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   p.UserID.String(),
		Username: username,
		Role:     p.Role,
	}
	if p.OrgID != uuid.Nil {
		claims.OrgID = p.OrgID.String()
	}
	if p.BranchID != uuid.Nil {
		claims.BranchID = p.BranchID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &AccessToken{Token: signed, ExpiresAt: expiresAt, TokenType: "Bearer"}, nil
}

// Validate parses a token and checks signature, issuer, audience and time
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Expiration returns the access token lifetime
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}
