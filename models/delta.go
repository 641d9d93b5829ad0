package models

// DeltaPage is one page of changes returned by the remote service since a
// cursor.
type DeltaPage struct {
	Items      []RemoteItem `json:"items"`
	NextCursor string       `json:"next_cursor"`
	HasMore    bool         `json:"has_more"`
}

// PushRequest is a conditional write of a local edit to the remote service.
type PushRequest struct {
	UID             string `json:"uid"`
	Payload         []byte `json:"payload,omitempty"`
	Delete          bool   `json:"delete"`
	BaseRemoteStamp Stamp  `json:"base_stamp"`
}

// PushResponse carries the stamp assigned by the remote to an accepted push.
type PushResponse struct {
	UID         string `json:"uid"`
	RemoteStamp Stamp  `json:"stamp"`
}

// PushRequestFromEdit builds the conditional write for a pending edit.
func PushRequestFromEdit(edit PendingEdit) PushRequest {
	req := PushRequest{
		UID:             edit.UID,
		Delete:          edit.Delete,
		BaseRemoteStamp: edit.BaseRemoteStamp,
	}
	if !edit.Delete {
		req.Payload = edit.NewPayload
	}
	return req
}
