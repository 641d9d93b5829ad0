// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors of the request middleware. Callers can match against them
// with [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned when the request has no
	// "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the "Authorization"
	// header is not of the form "Bearer <token>".
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrIntegrityCheckFailed is returned when the HashSHA256 header does not
	// match the request body.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")

	ErrInvalidQueryParam = errors.New("invalid query parameter")
)
