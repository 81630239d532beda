package events

import "time"

// Event types broadcast over the WebSocket stream.
const (
	TypeEntryCreated = "list.entry_created"
	TypeEntryUpdated = "list.entry_updated"
	TypeEntryDeleted = "list.entry_deleted"
	TypeImportDone   = "list.import_done"
)

type ListEvent struct {
	Type    string    `json:"type"`
	UserID  string    `json:"user_id"`
	EntryID string    `json:"entry_id,omitempty"`
	AnimeID string    `json:"anime_id,omitempty"`
	Status  string    `json:"status,omitempty"`
	At      time.Time `json:"at"`
}

type ImportEvent struct {
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	Imported int       `json:"imported"`
	Skipped  int       `json:"skipped"`
	At       time.Time `json:"at"`
}
