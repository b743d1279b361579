package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/larder-app/larder/backend/internal/types"
)

var ErrInvalidToken = errors.New("invalid token")

// AuthService validates bearer tokens issued by the external auth provider.
// Tokens are only minted here for tests and local seeding.
type AuthService struct {
	jwtSecret []byte
	issuer    string
	now       func() time.Time
}

func NewAuthService(jwtSecret, issuer string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
		issuer:    issuer,
		now:       time.Now,
	}
}

// WithNowFunc overrides the clock used for issued-at and expiry claims.
func (s *AuthService) WithNowFunc(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// GenerateToken signs claims with HS256. A zero ttl means no expiry.
func (s *AuthService) GenerateToken(claims *types.TokenClaims, ttl time.Duration) (string, error) {
	if claims.UserID == uuid.Nil {
		return "", fmt.Errorf("failed to generate token: missing user id")
	}
	c := *claims
	now := s.now()
	c.Subject = claims.UserID.String()
	c.IssuedAt = jwt.NewNumericDate(now)
	if s.issuer != "" {
		c.Issuer = s.issuer
	}
	if ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies tokenString. The user id is read from the
// user_id claim, falling back to the subject.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == uuid.Nil {
		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
		}
		claims.UserID = id
	}
	return claims, nil
}
