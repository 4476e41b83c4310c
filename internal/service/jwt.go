package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

func InitJWT() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	jwtSecret = []byte(secret)
}

// GenerateJWT mints a 24h HS256 token carrying the owner id. Token issuing
// normally lives in the external auth service; this exists for the dev token
// tool and for tests.
func GenerateJWT(ownerID int64) (string, error) {
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"user_id": ownerID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     now,
		"nbf":     now,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseJWT validates a token and returns the owner id it carries.
func ParseJWT(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}

	now := time.Now().Unix()
	if exp, ok := claims["exp"].(float64); ok && int64(exp) < now {
		return 0, errors.New("token expired")
	}
	if nbf, ok := claims["nbf"].(float64); ok && int64(nbf) > now {
		return 0, errors.New("token not valid yet")
	}

	ownerID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("user_id not found")
	}

	return int64(ownerID), nil
}
