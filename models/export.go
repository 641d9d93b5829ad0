package models

import "time"

// ExportCheckpoint is the journal position an exporter has fully consumed.
type ExportCheckpoint struct {
	Exporter     string    `json:"exporter"`
	CollectionID string    `json:"collection_id"`
	Revision     int64     `json:"revision"`
	UpdatedAt    time.Time `json:"updated_at"`
}
