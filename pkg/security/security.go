package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	TOKEN_KEY    = "Authorization"
	TOKEN_PREFIX = "Bearer "
)

var (
	ErrInvalidJWT      = errors.New("invalid token")
	ErrInvalidPassword = errors.New("invalid password")
)

type TokenClaims struct {
	User       string `json:"u"`
	Email      string `json:"e"`
	ExpireTime int64  `json:"exp"`
	NotBefore  int64  `json:"nbf"`
}

func NewTokenClaims(userID, email string, ttl time.Duration) TokenClaims {
	now := time.Now()
	return TokenClaims{
		User:       userID,
		Email:      email,
		ExpireTime: now.Add(ttl).Unix(),
		NotBefore:  now.Unix() - 1,
	}
}

func (t TokenClaims) GetUser() string {
	return t.User
}

func (t TokenClaims) mapClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"u":   t.User,
		"e":   t.Email,
		"exp": t.ExpireTime,
		"nbf": t.NotBefore,
	}
}

// GenerateJWT signs the claims with HS256.
func GenerateJWT(info TokenClaims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, info.mapClaims())
	return token.SignedString(secret)
}

func VerifyToken(tokenString string, secret []byte) (*TokenClaims, error) {
	claims, err := ParseJWT(tokenString, secret)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	if claims.ExpireTime < now || claims.NotBefore > now {
		return nil, fmt.Errorf("expired token, %w", ErrInvalidJWT)
	}
	return claims, nil
}

func ParseJWT(tokenString string, secret []byte) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v, %w", t.Header["alg"], ErrInvalidJWT)
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err.Error(), ErrInvalidJWT)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidJWT
	}

	result := &TokenClaims{}
	result.User, _ = mc["u"].(string)
	result.Email, _ = mc["e"].(string)
	if v, ok := mc["exp"].(float64); ok {
		result.ExpireTime = int64(v)
	}
	if v, ok := mc["nbf"].(float64); ok {
		result.NotBefore = int64(v)
	}
	if result.User == "" {
		return nil, ErrInvalidJWT
	}
	return result, nil
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hashed, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
