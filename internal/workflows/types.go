package workflows

type DeckBuildInput struct {
	DeckID      string `json:"deck_id"`
	Topic       string `json:"topic"`
	Description string `json:"description,omitempty"`
	SlideCount  int    `json:"slide_count"`
	SourceID    string `json:"source_id,omitempty"`
}

type DeckProgress struct {
	DeckID      string            `json:"deck_id"`
	CurrentStep string            `json:"current_step"`
	Status      string            `json:"status"`
	FailKind    string            `json:"fail_kind,omitempty"`
	FailReason  string            `json:"fail_reason,omitempty"`
	Backend     string            `json:"backend,omitempty"`
	Model       string            `json:"model,omitempty"`
	Steps       map[string]string `json:"steps"`
}
