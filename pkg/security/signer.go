package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"evsys/event-api/internal/apperr"
)

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Signer signs and parses the JWT pairs used for sessions. It's constructed
// once at startup from config and injected wherever tokens are handled, so
// there is no ambient signing state.
type Signer struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewSigner(secret string, accessTTL, refreshTTL time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret can't be empty")
	}

	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be bigger than 0")
	}

	return &Signer{
		secret:     []byte(secret),
		method:     jwt.SigningMethodHS256,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}, nil
}

// Sign creates a token of the given kind for a user. The kind is embedded as
// a "type" claim and checked again on parse, so an access token can never
// pass where a refresh token is expected or the other way around.
func (s *Signer) Sign(userID string, kind TokenKind, now time.Time) (string, error) {
	ttl := s.AccessTTL
	if kind == TokenKindRefresh {
		ttl = s.RefreshTTL
	}

	t := jwt.NewWithClaims(s.method, jwt.MapClaims{
		"user_id": userID,
		"type":    string(kind),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})

	return t.SignedString(s.secret)
}

// Parse validates signature, expiry and the "type" claim of a token and
// returns the embedded user ID.
func (s *Signer) Parse(tokenStr string, kind TokenKind) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.Wrap(apperr.InvalidToken, "Invalid or expired token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperr.New(apperr.InvalidToken, "Invalid or expired token")
	}

	if k, _ := claims["type"].(string); k != string(kind) {
		return "", apperr.New(apperr.InvalidToken, "Wrong token type")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", apperr.New(apperr.InvalidToken, "Invalid or expired token")
	}

	return userID, nil
}
