// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// errNoHandlersAreCreated is returned by NewHandlers when the feed API has no
// listen address. The daemon then runs its background jobs only.
var errNoHandlersAreCreated = errors.New("no handlers are created")

// IsNoHandlers reports whether err means that the feed API is disabled.
func IsNoHandlers(err error) bool {
	return errors.Is(err, errNoHandlersAreCreated)
}
