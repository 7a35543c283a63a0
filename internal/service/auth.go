package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService issues access tokens.
type AuthService struct {
	secret []byte
	maxAge int
	now    func() time.Time
}

// NewAuthService takes the signing secret and token lifetime in seconds.
func NewAuthService(secret string, maxAgeSeconds int) *AuthService {
	return &AuthService{secret: []byte(secret), maxAge: maxAgeSeconds, now: time.Now}
}

// MaxAge is the token lifetime in seconds.
func (s *AuthService) MaxAge() int {
	return s.maxAge
}

// IssueToken signs an HS256 token carrying user_id, iat and exp.
func (s *AuthService) IssueToken(userID int64) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(time.Duration(s.maxAge) * time.Second).Unix(),
		"iat":     now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
