// Package token issues and verifies the signed bearer tokens that carry a
// user's resource key. A token binds exactly one claim and embeds no expiry:
// staleness is enforced out-of-band by the retention sweep deleting the user
// the key points at.
package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

const userKeyClaim = "user-key"

// ErrInvalidToken is returned by Verify for any token that fails to decode,
// is signed with an unexpected algorithm, or lacks the user-key claim.
var ErrInvalidToken = errors.New("invalid token")

// Service signs and verifies bearer tokens with a symmetric HS256 key.
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// Issue returns a signed token carrying the given user key.
func (s *Service) Issue(userKey string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userKeyClaim: userKey,
	})
	return t.SignedString(s.secret)
}

// Verify decodes the token and returns the user key it carries. The signing
// algorithm is pinned to HS256 so a token cannot downgrade to "none" or
// substitute an asymmetric scheme.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}

	userKey, ok := claims[userKeyClaim].(string)
	if !ok || userKey == "" {
		return "", ErrInvalidToken
	}
	return userKey, nil
}
