package models

import "bytes"

// Stamp is an opaque per-item version marker issued by the remote service.
//
// Stamps are never parsed. They are ordered by byte length first and then
// bytewise, so decimal counters ("9" < "10") and fixed-width tokens both
// compare correctly. An empty stamp sorts before every other stamp and means
// "never written remotely".
type Stamp string

// Compare returns -1, 0 or +1 when s is older than, equal to, or newer than
// other.
func (s Stamp) Compare(other Stamp) int {
	if len(s) != len(other) {
		if len(s) < len(other) {
			return -1
		}
		return 1
	}
	return bytes.Compare([]byte(s), []byte(other))
}

// NewerThan reports whether s is strictly newer than other.
func (s Stamp) NewerThan(other Stamp) bool {
	return s.Compare(other) > 0
}

// IsZero reports whether the stamp is empty.
func (s Stamp) IsZero() bool {
	return s == ""
}

func (s Stamp) String() string {
	return string(s)
}
