package activities

import "deckforge/internal/deck"

type GenerateSlidesInput struct {
	DeckID        string `json:"deck_id"`
	Topic         string `json:"topic"`
	Description   string `json:"description,omitempty"`
	SlideCount    int    `json:"slide_count"`
	SourceContext string `json:"source_context,omitempty"`
}

type GenerateSlidesOutput struct {
	Slides  []deck.Slide `json:"slides"`
	Batches int          `json:"batches"`
	Backend string       `json:"backend"`
	Model   string       `json:"model"`
}

type AssembleDeckInput struct {
	DeckID string       `json:"deck_id"`
	Topic  string       `json:"topic"`
	Slides []deck.Slide `json:"slides"`
}

type AssembleDeckOutput struct {
	OutPath string `json:"out_path"`
}

type ExtractSourceTextInput struct {
	SourceID string `json:"source_id"`
}

type ExtractSourceTextOutput struct {
	Text string `json:"text"`
}

type UpdateDeckStatusInput struct {
	DeckID     string `json:"deck_id"`
	Status     string `json:"status"`
	FailKind   string `json:"fail_kind,omitempty"`
	FailReason string `json:"fail_reason,omitempty"`
}

type MarkDeckCompletedInput struct {
	DeckID  string `json:"deck_id"`
	OutPath string `json:"out_path"`
	Backend string `json:"backend"`
	Model   string `json:"model"`
}
