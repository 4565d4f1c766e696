package security

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"peerrent-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// ActorClaims carries the identity the auth collaborator resolved for a
// request. The core trusts these claims as given; token issuance happens
// elsewhere.
type ActorClaims struct {
	AccountID int32  `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// AccountRole maps the claim's role string onto the domain role, defaulting
// to a plain user.
func (c *ActorClaims) AccountRole() domain.AccountRole {
	switch c.Role {
	case string(domain.AccountRoleAdmin):
		return domain.AccountRoleAdmin
	case string(domain.AccountRoleSystem):
		return domain.AccountRoleSystem
	default:
		return domain.AccountRoleUser
	}
}

type TokenManager interface {
	ValidateToken(tokenString string) (*ActorClaims, error)
}

type tokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
	}
}

func (m *tokenManager) ValidateToken(tokenString string) (*ActorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*ActorClaims); ok && token.Valid {
		// Populate AccountID from Subject if it was lost (though we set both)
		if claims.AccountID == 0 && claims.Subject != "" {
			id, _ := strconv.Atoi(claims.Subject)
			claims.AccountID = int32(id)
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
