package observe

import "time"

// CodeSource tells the alert backend which repository and revision produced
// an event, so the investigation tool can link stack frames to source lines.
type CodeSource struct {
	Repository string `json:"repository"`
	Revision   string `json:"revision"`
}

// Event is the alert payload delivered to the observability backend when a
// request terminates abnormally.
type Event struct {
	EventID    string     `json:"id"`
	Kind       string     `json:"kind"` // "panic"
	Error      string     `json:"error"`
	Stack      string     `json:"stack,omitempty"`
	Method     string     `json:"method"`
	Route      string     `json:"route"`
	RequestID  string     `json:"request_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
	CodeSource CodeSource `json:"code_source"`
}
