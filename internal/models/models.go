package models

import "time"

type Deck struct {
	DeckID     string    `json:"deck_id"`
	Topic      string    `json:"topic"`
	Description string   `json:"description,omitempty"`
	SlideCount int       `json:"slide_count"`
	SourceID   string    `json:"source_id,omitempty"`
	Status     string    `json:"status"`
	FailKind   string    `json:"fail_kind,omitempty"`
	FailReason string    `json:"fail_reason,omitempty"`
	OutPath    string    `json:"out_path,omitempty"`
	Backend    string    `json:"backend,omitempty"`
	Model      string    `json:"model,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProviderCall is one audited upstream batch attempt.
type ProviderCall struct {
	CallID     string    `json:"call_id"`
	DeckID     string    `json:"deck_id"`
	BatchIndex int       `json:"batch_index"`
	Backend    string    `json:"backend"`
	Model      string    `json:"model"`
	Requested  int       `json:"requested"`
	Parsed     int       `json:"parsed"`
	Accepted   int       `json:"accepted"`
	Status     string    `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
