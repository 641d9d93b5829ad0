package models

// OutcomeKind is the decision of the conflict resolver.
type OutcomeKind int

const (
	// AcceptRemote drops the local edit and applies the remote item.
	AcceptRemote OutcomeKind = iota
	// KeepLocalAndRetry keeps the local edit and pushes it to the remote.
	KeepLocalAndRetry
	// Merge applies the remote item and re-queues the merged payload as a new
	// local edit based on the remote stamp.
	Merge
)

func (k OutcomeKind) String() string {
	switch k {
	case AcceptRemote:
		return "accept_remote"
	case KeepLocalAndRetry:
		return "keep_local_and_retry"
	case Merge:
		return "merge"
	default:
		return "unknown"
	}
}

// Outcome is returned by a conflict resolver.
type Outcome struct {
	Kind OutcomeKind
	// MergedPayload is set only for Merge.
	MergedPayload []byte
}
