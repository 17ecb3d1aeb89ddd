package history

import "time"

// Record is one finished recommendation: which emotion a session ended in
// and how many songs matched. Transcripts are never stored.
type Record struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	UserName   string    `json:"user_name,omitempty"`
	Emotion    string    `json:"emotion"`
	Classified bool      `json:"classified"`
	Matches    int       `json:"matches"`
	CreatedAt  time.Time `json:"created_at"`
}
