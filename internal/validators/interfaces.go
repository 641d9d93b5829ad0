// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks data at the two edges of the sync engine.
//
// Delta pages and single items fetched from the remote service must carry a
// UID and a non-empty stamp on every item, and a page that reports more data
// must name a continuation cursor. Failures there are treated as protocol
// errors by the coordinator.
//
// Edit requests and pending edits staged by the host must name an item, and
// must either delete it or carry a payload, never both. Pending edits read
// back from storage must also keep their edit ID and collection.
//
// Callers may pass field names (FieldUID, FieldNextCursor, ...) to run only
// part of the checks.
package validators

import "context"

// Validator validates a value, optionally restricted to the named fields.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
