package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-mirror-keeper/models"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWTToken creates a signed HMAC-SHA256 JWT token for the feed API.
//
// The token carries the issuer, the operator as subject, and the issue and
// expiry times. All parameters are required; a negative duration yields an
// already expired token.
//
//	token, err := utils.GenerateJWTToken("mirror-keeper", "exporter-1", time.Hour, "secret")
func GenerateJWTToken(issuer, operator string, tokenDuration time.Duration, signKey string) (models.Token, error) {
	if issuer == "" || operator == "" || tokenDuration == 0 || signKey == "" {
		return models.Token{}, errors.New("invalid params for generating JWT Token")
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   operator,
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred during singing JWT token: %w", err)
	}

	return models.Token{Token: token, SignedString: tokenString, Operator: operator}, nil
}

// ValidateAndParseJWTToken validates the given JWT token string and extracts
// the operator from its subject.
//
// Validation covers the HS256 signature, the issuer claim, expiry and a
// non-empty subject.
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string) (models.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Token{}, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	operator, err := token.Claims.GetSubject()
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred during getting subject from token: %w", err)
	}
	if operator == "" {
		return models.Token{}, errors.New("empty subject error")
	}

	parsed := models.Token{Token: token, SignedString: tokenString, Operator: operator}
	if claims, ok := token.Claims.(*models.Token); ok {
		parsed.RegisteredClaims = claims.RegisteredClaims
	}

	return parsed, nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Fields(authorizationHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
