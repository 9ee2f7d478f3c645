package identity

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/palemoky/hearts/internal/apperrors"
)

// Claims 令牌声明
type Claims struct {
	UserID string `json:"userID"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider 校验 HS256 令牌，userID 声明即用户 ID
type JWTProvider struct {
	secret []byte
}

// NewJWTProvider 创建 JWT 身份解析器
func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

// Sign 签发令牌，ttl 为 0 时不过期
func (p *JWTProvider) Sign(userID, name string, ttl time.Duration) (string, error) {
	claims := &Claims{UserID: userID, Name: name}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Identify 解析请求中的令牌
func (p *JWTProvider) Identify(r *http.Request) (Identity, error) {
	raw := tokenFromRequest(r)
	if raw == "" {
		return Identity{}, apperrors.ErrUnauthorized
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}
	if claims.UserID == "" {
		return Identity{}, apperrors.ErrUnauthorized
	}

	name := claims.Name
	if name == "" {
		name = claims.UserID
	}
	return Identity{UserID: claims.UserID, Name: name}, nil
}
