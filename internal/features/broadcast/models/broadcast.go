package models

// Broadcast is one scheduled daily message, keyed in the store by a
// generated id. LastSentDate (YYYY-MM-DD) guards against double sends.
type Broadcast struct {
	Text         string `json:"text"`
	Hour         int    `json:"hour"`
	LastSentDate string `json:"last_sent_date,omitempty"`
}
