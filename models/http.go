package models

// ItemsResponse is a page of mirrored items returned by the feed API.
type ItemsResponse struct {
	Items []Item `json:"items"`
	// Next is the revision to pass as `since` to continue reading.
	Next   int64 `json:"next"`
	Length int   `json:"length"`
}

// JournalResponse is a page of journal entries returned by the feed API.
type JournalResponse struct {
	Entries []JournalEntry `json:"entries"`
	Next    int64          `json:"next"`
	Length  int            `json:"length"`
}

// JournalCompactedResponse is returned with 410 Gone when a journal read
// starts below the compaction floor. The reader resyncs from the items feed
// and resumes the journal at CompactedThrough.
type JournalCompactedResponse struct {
	Error            string `json:"error"`
	CompactedThrough int64  `json:"compacted_through"`
}

// StatusResponse lists the status of every known collection.
type StatusResponse struct {
	Collections []CollectionStatus `json:"collections"`
	Length      int                `json:"length"`
}

// EditRequest stages a local edit through the feed API.
type EditRequest struct {
	UID             string `json:"uid"`
	BaseRemoteStamp Stamp  `json:"base_remote_stamp"`
	Payload         []byte `json:"payload,omitempty"`
	Delete          bool   `json:"delete"`
}

// JournalStreamMessage is a websocket frame of the journal tail.
type JournalStreamMessage struct {
	Type  string        `json:"type"`
	Entry *JournalEntry `json:"entry,omitempty"`
	Error string        `json:"error,omitempty"`
	// CompactedThrough is set on "compacted" messages.
	CompactedThrough int64 `json:"compacted_through,omitempty"`
}
