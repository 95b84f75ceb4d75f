package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/templui/coachflow/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("not allowed")
)

type identityClaims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies the bearer tokens callers present.
// Sessions and sign-in live with the product in front of this service.
type AuthService struct {
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

func (s *AuthService) GenerateJWT(identity model.Identity) (string, error) {
	if identity.Subject == "" || !identity.Role.Valid() {
		return "", fmt.Errorf("cannot sign identity %q with role %q", identity.Subject, identity.Role)
	}

	now := time.Now()
	claims := identityClaims{
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (*model.Identity, error) {
	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}

	return &model.Identity{Subject: claims.Subject, Role: claims.Role}, nil
}
