package model

import "time"

// Run is one recorded grouping pass.
type Run struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Session    string    `json:"session,omitempty"`
	OutDir     string    `json:"outdir"`
	CreatedAt  time.Time `json:"created_at"`
	Files      int       `json:"files"`
	Series     int       `json:"series"`
	Degraded   int       `json:"degraded"`
	MultiMatch int       `json:"multi_match"`
	// Override is set when labels came from an edited document.
	Override bool `json:"override,omitempty"`
}
