// auth/auth.go
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	DefaultTTL = 24 * time.Hour
	issuer     = "stride"
	subject    = "owner"
)

var ErrInvalidPassword = errors.New("invalid password")

type Claims struct {
	jwt.RegisteredClaims
}

// Service checks the server password and issues HS256 tokens.
type Service struct {
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func New(password, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{password: password, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Login exchanges the server password for a token.
func (s *Service) Login(password string) (string, time.Time, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return "", time.Time{}, ErrInvalidPassword
	}
	return s.GenerateToken()
}

func (s *Service) GenerateToken() (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not sign token: %w", err)
	}
	return signed, expires, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			return nil, fmt.Errorf("token is expired or not active yet")
		}
		return nil, fmt.Errorf("couldn't handle this token: %w", err)
	}
	if !token.Valid || claims.Issuer != issuer {
		return nil, fmt.Errorf("token is invalid")
	}
	return claims, nil
}

// Middleware accepts "Authorization: Bearer <token>" or, for WebSocket
// upgrades that cannot set headers, a token query parameter.
func (s *Service) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}
		if _, err := s.ValidateToken(token); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return c.Next()
	}
}
