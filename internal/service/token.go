package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cyberkids_accounts/internal/apperr"
	"cyberkids_accounts/internal/models"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64       `json:"user_id"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	TokenType string      `json:"token_type"`
}

// TokenIssuer signs and parses HS256 access/refresh tokens.
type TokenIssuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(signingKey string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		key:        []byte(signingKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue returns a fresh access/refresh pair for a.
func (ti *TokenIssuer) Issue(a *models.Account) (models.TokenPair, error) {
	access, err := ti.sign(a, TokenTypeAccess, ti.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := ti.sign(a, TokenTypeRefresh, ti.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess returns only a new access token.
func (ti *TokenIssuer) IssueAccess(a *models.Account) (string, error) {
	return ti.sign(a, TokenTypeAccess, ti.accessTTL)
}

func (ti *TokenIssuer) sign(a *models.Account, tokenType string, ttl time.Duration) (string, error) {
	now := ti.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(a.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    a.ID,
		Username:  a.Username,
		Role:      a.Role,
		TokenType: tokenType,
	})
	signed, err := token.SignedString(ti.key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Parse validates raw and checks it is of wantType. Every failure is an
// apperr auth error so callers can map it straight to 401.
func (ti *TokenIssuer) Parse(raw, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.key, nil
	}, jwt.WithTimeFunc(ti.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Auth("token expired")
		}
		return nil, apperr.Auth("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.Auth("invalid token")
	}
	if claims.TokenType != wantType {
		return nil, apperr.Auth("wrong token type")
	}
	return claims, nil
}
