// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, HTTP client initialization, JWT token generation
// and validation, and other common operations.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// OperatorCtxKey is the key used to store the authenticated feed API
// operator in the context.
//
//	ctx := context.WithValue(ctx, utils.OperatorCtxKey, "exporter-1")
var OperatorCtxKey = contextKey("operator")

// GetOperatorFromContext retrieves the authenticated operator from the
// context. ok is false when the value is missing, empty or not a string.
func GetOperatorFromContext(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(OperatorCtxKey).(string)
	return operator, ok && operator != ""
}
