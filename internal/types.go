package internal

import "time"

type AlignmentRequest struct {
	ID         string    `json:"id"`
	SourceText string    `json:"source_text"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	Timestamp  time.Time `json:"timestamp"`
}

// AlignmentRecord is the persisted summary of one aligned sentence pair.
type AlignmentRecord struct {
	RequestID       string    `json:"request_id"`
	TargetText      string    `json:"target_text"`
	GizaAlignment   string    `json:"giza_alignment"`
	PhraseCount     int       `json:"phrase_count"`
	PhraseBasedText string    `json:"phrase_based_translation"`
	Backend         string    `json:"backend"`
	CreatedAt       time.Time `json:"created_at"`
}
