package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Secrets are dev defaults; main overrides them from the environment.
var (
	AdminSecret = []byte("dev-admin-secret")
	UserSecret  = []byte("dev-user-secret")
)

func GenerateAdminToken(adminID uint, username string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": adminID,
		"username": username,
		"role":     "admin",
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(AdminSecret)
}

func GenerateUserToken(userID uint, username string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"role":     "operator",
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(UserSecret)
}

func VerifyAdminToken(tokenString string) (jwt.MapClaims, error) {
	return verify(tokenString, AdminSecret)
}

func VerifyUserToken(tokenString string) (jwt.MapClaims, error) {
	return verify(tokenString, UserSecret)
}

func verify(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// ClaimUint reads a numeric claim; JWT numbers arrive as float64.
func ClaimUint(claims jwt.MapClaims, key string) uint {
	switch v := claims[key].(type) {
	case float64:
		return uint(v)
	case int:
		return uint(v)
	case uint:
		return v
	}
	return 0
}
