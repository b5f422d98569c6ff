package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultTokenIssuer = "synqit"

	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// JWTManager signs and verifies the HS256 access/refresh pair.
type JWTManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Issuer:        DefaultTokenIssuer,
	}
}

// TokenSubject is the identity embedded in every token.
type TokenSubject struct {
	UserID           string
	Email            string
	UserType         string
	SubscriptionTier string
	SessionID        string
}

// Claims is stateless on its own; SessionID ties it to a revocable session row.
type Claims struct {
	UserID           string `json:"userId"`
	Email            string `json:"email"`
	UserType         string `json:"userType"`
	SubscriptionTier string `json:"subscriptionTier"`
	SessionID        string `json:"sessionId"`
	Use              string `json:"use"`
	jwt.RegisteredClaims
}

var (
	errTokenSession = errors.New("token missing session")
	errTokenUse     = errors.New("token used for the wrong purpose")
)

func (m *JWTManager) GenerateAccessToken(sub TokenSubject) (string, time.Time, error) {
	return m.sign(sub, tokenUseAccess, m.AccessSecret, m.AccessTTL)
}

// GenerateRefreshToken carries a fresh jti, so two refreshes within the same
// second still produce distinct tokens.
func (m *JWTManager) GenerateRefreshToken(sub TokenSubject) (string, time.Time, error) {
	return m.sign(sub, tokenUseRefresh, m.RefreshSecret, m.RefreshTTL)
}

func (m *JWTManager) sign(sub TokenSubject, use string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := &Claims{
		UserID:           sub.UserID,
		Email:            sub.Email,
		UserType:         sub.UserType,
		SubscriptionTier: sub.SubscriptionTier,
		SessionID:        sub.SessionID,
		Use:              use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.Issuer,
			Subject:   sub.UserID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	return s, exp, err
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, tokenUseAccess, m.AccessSecret)
}

func (m *JWTManager) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, tokenUseRefresh, m.RefreshSecret)
}

func (m *JWTManager) parse(tokenStr, use string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.SessionID == "" || claims.UserID == "" {
		return nil, errTokenSession
	}
	if claims.Use != use {
		return nil, errTokenUse
	}
	return claims, nil
}
