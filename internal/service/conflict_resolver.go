package service

import (
	"fmt"

	"github.com/MKhiriev/go-mirror-keeper/models"
)

// Conflict policy names accepted by [NewConflictResolver].
const (
	PolicyLastWriterWins = "last_writer_wins"
	PolicyRemoteWins     = "remote_wins"
	PolicyLocalWins      = "local_wins"
)

// MergeFunc combines a local payload with the incoming remote payload.
type MergeFunc func(local, remote []byte) []byte

// LastWriterWins decides by stamp order alone. An incoming stamp strictly
// newer than the base of the edit means someone else wrote since the edit was
// made, so the remote version is kept. Otherwise the edit is still based on
// the latest known version (or the delivery is a stale replay) and is pushed.
type LastWriterWins struct{}

func (LastWriterWins) Resolve(pending models.PendingEdit, incoming models.RemoteItem) models.Outcome {
	if incoming.RemoteStamp.NewerThan(pending.BaseRemoteStamp) {
		return models.Outcome{Kind: models.AcceptRemote}
	}
	return models.Outcome{Kind: models.KeepLocalAndRetry}
}

// RemoteWins keeps the remote version whenever its stamp differs from the
// base of the edit.
type RemoteWins struct{}

func (RemoteWins) Resolve(pending models.PendingEdit, incoming models.RemoteItem) models.Outcome {
	if incoming.RemoteStamp.Compare(pending.BaseRemoteStamp) != 0 {
		return models.Outcome{Kind: models.AcceptRemote}
	}
	return models.Outcome{Kind: models.KeepLocalAndRetry}
}

// LocalWins always pushes the local edit.
type LocalWins struct{}

func (LocalWins) Resolve(models.PendingEdit, models.RemoteItem) models.Outcome {
	return models.Outcome{Kind: models.KeepLocalAndRetry}
}

// MergeResolver merges concurrent content edits with Merge. Deletions on
// either side are decided by Fallback.
type MergeResolver struct {
	Merge    MergeFunc
	Fallback ConflictResolver
}

func (r MergeResolver) Resolve(pending models.PendingEdit, incoming models.RemoteItem) models.Outcome {
	fallback := r.Fallback
	if fallback == nil {
		fallback = LastWriterWins{}
	}

	if pending.Delete || incoming.Deleted || !incoming.RemoteStamp.NewerThan(pending.BaseRemoteStamp) {
		return fallback.Resolve(pending, incoming)
	}

	return models.Outcome{
		Kind:          models.Merge,
		MergedPayload: r.Merge(pending.NewPayload, incoming.Payload),
	}
}

// NewConflictResolver returns the resolver for a configured policy. When
// merge is not nil the policy only decides the cases merge cannot handle.
func NewConflictResolver(policy string, merge MergeFunc) (ConflictResolver, error) {
	var resolver ConflictResolver
	switch policy {
	case PolicyLastWriterWins, "":
		resolver = LastWriterWins{}
	case PolicyRemoteWins:
		resolver = RemoteWins{}
	case PolicyLocalWins:
		resolver = LocalWins{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConflictPolicy, policy)
	}

	if merge != nil {
		return MergeResolver{Merge: merge, Fallback: resolver}, nil
	}

	return resolver, nil
}
