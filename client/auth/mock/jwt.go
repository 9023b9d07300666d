package mock

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/viant/authsession/client/identity"
)

// Claims represents access token claims
type Claims struct {
	Role identity.Role `json:"role"`
	jwt.RegisteredClaims
}

// createJWT issues a signed access token for account and opens its session
func (s *Service) createJWT(account *Account) (string, error) {
	now := s.Clock.Now()
	claims := Claims{
		Role: account.User.UserRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.Issuer,
			Subject:   account.User.UserAccount,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.PrivateKey)
	if err != nil {
		return "", err
	}
	s.sessions.Put(signed, account.User.UserAccount)
	return signed, nil
}

// verifyJWT validates signature and, unless lenient, expiry
func (s *Service) verifyJWT(value string, lenient bool) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.Issuer),
		jwt.WithTimeFunc(s.Clock.Now),
	}
	if lenient {
		options = append(options, jwt.WithoutClaimsValidation())
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		return &s.PrivateKey.PublicKey, nil
	}, options...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
