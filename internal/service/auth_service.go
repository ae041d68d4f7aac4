package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"quizarena/internal/model"
)

var (
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrInvalidUsername = errors.New("username is required")
)

// AuthService mints and validates guest tokens. A guest token binds a
// username to a generated identity so the WebSocket layer knows who a
// connection is.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(secret string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
	}
}

// GuestLogin issues a token for a display username.
func (s *AuthService) GuestLogin(username string) (*model.GuestLoginResponse, error) {
	if username == "" {
		return nil, ErrInvalidUsername
	}

	guestID := "g_" + uuid.New().String()[:8]

	claims := &model.GuestClaims{
		GuestID:  guestID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.GuestLoginResponse{
		Token:    tokenString,
		GuestID:  guestID,
		Username: username,
	}, nil
}

// ValidateGuestToken validates a guest JWT and returns its claims.
func (s *AuthService) ValidateGuestToken(tokenString string) (*model.GuestClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.GuestClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.GuestClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
