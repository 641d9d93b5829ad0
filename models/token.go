package models

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a JWT token presented to the feed API.
//
// It embeds [jwt.Token] for low-level token operations (signing, parsing)
// and [jwt.RegisteredClaims] for standard claim access.
//
// SignedString holds the compact serialized form of the token
// (header.payload.signature) ready to be sent in the Authorization header.
//
// Operator is a cached copy of the "sub" claim naming the exporter or
// operator that holds the token.
type Token struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	SignedString string `json:"-"`

	Operator string `json:"-"`
}

// GetOperator extracts the operator name from the "sub" claim of the
// parsed or signed token.
func (t *Token) GetOperator() (string, error) {
	if t.Token == nil || t.Token.Claims == nil {
		return "", errors.New("token has no claims")
	}

	operator, err := t.Token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting operator from token: %w", err)
	}
	if operator == "" {
		return "", errors.New("empty operator in token subject")
	}

	return operator, nil
}

// String returns the compact JWS serialization of the token.
func (t *Token) String() string {
	return t.SignedString
}
