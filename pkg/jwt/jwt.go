package jwt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"blog-backend/config"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 令牌类型，写入 token_type 声明，防止不同用途的令牌混用
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeReset   = "reset"
)

var (
	ErrInvalidToken  = errors.New("token is invalid or expired")
	ErrWrongType     = errors.New("token has wrong type")
	ErrTokenRevoked  = errors.New("token is blacklisted")
	ErrEmptyIdentity = errors.New("user id is required")
)

// Blacklist 已作废令牌的存储，按 jti 记录直到令牌自然过期
type Blacklist interface {
	// Revoke 作废 jti，jti 已被作废时返回 false
	Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// JWTService 提供 JWT 生成与校验能力
// 使用对称密钥 HS256，用户ID存放在 Subject 与 user_id

type JWTService struct {
	secretKey  []byte        // 对称密钥
	issuer     string        // 签发者
	accessTTL  time.Duration // access 过期时间
	refreshTTL time.Duration // refresh 过期时间
	resetTTL   time.Duration // 重置密码令牌过期时间
	blacklist  Blacklist
}

// Identity 写入令牌的用户信息（均为非敏感字段）
type Identity struct {
	UserID   uint
	FullName string
	Email    string
	Username string
	VendorID uint // 无商家身份时为 0
}

// CustomClaims 自定义声明载荷
type CustomClaims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	FullName  string `json:"full_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	VendorID  uint   `json:"vendor_id"`
	jwtv5.RegisteredClaims
}

// TokenPair access + refresh
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// NewJWTService 创建 JWT 服务，blacklist 可为空（此时不支持作废）
func NewJWTService(cfg config.JWTConfig, blacklist Blacklist) *JWTService {
	return &JWTService{
		secretKey:  []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		resetTTL:   cfg.ResetTTL,
		blacklist:  blacklist,
	}
}

// GenerateToken 生成指定类型的令牌
func (s *JWTService) GenerateToken(id Identity, tokenType string) (string, error) {
	if id.UserID == 0 {
		return "", ErrEmptyIdentity
	}

	ttl, err := s.ttlFor(tokenType)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &CustomClaims{
		UserID:    id.UserID,
		TokenType: tokenType,
		FullName:  id.FullName,
		Email:     id.Email,
		Username:  id.Username,
		VendorID:  id.VendorID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(id.UserID), 10),
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

// GeneratePair 签发 access + refresh
func (s *JWTService) GeneratePair(id Identity) (*TokenPair, error) {
	access, err := s.GenerateToken(id, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.GenerateToken(id, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *JWTService) ttlFor(tokenType string) (time.Duration, error) {
	switch tokenType {
	case TokenTypeAccess:
		return s.accessTTL, nil
	case TokenTypeRefresh:
		return s.refreshTTL, nil
	case TokenTypeReset:
		return s.resetTTL, nil
	}
	return 0, fmt.Errorf("unknown token type %q", tokenType)
}

// ValidateToken 校验签名、签发者、有效期与令牌类型
func (s *JWTService) ValidateToken(tokenString, expectedType string) (*CustomClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	// 解析令牌
	claims := &CustomClaims{}
	parsedToken, err := jwtv5.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwtv5.Token) (interface{}, error) {
			// 验证签名方法
			if token.Method != jwtv5.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		// 验证签发者
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsedToken.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, ErrWrongType
	}
	return claims, nil
}

// Rotate 校验 refresh 令牌并签发新的令牌对，旧 refresh 加入黑名单
// identity 由调用方按 claims.UserID 重新加载，保证用户信息为最新
func (s *JWTService) Rotate(ctx context.Context, refreshToken string, load func(ctx context.Context, userID uint) (Identity, error)) (*TokenPair, error) {
	claims, err := s.ValidateToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	// 先占用旧令牌的 jti，并发刷新时只有一个请求能成功
	if s.blacklist != nil {
		claimed, err := s.blacklist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
		if err != nil {
			return nil, fmt.Errorf("blacklist refresh token: %w", err)
		}
		if !claimed {
			return nil, ErrTokenRevoked
		}
	}

	id, err := load(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.GeneratePair(id)
}
