package domain

import "time"

// Login attempt outcomes recorded for the alert-investigation tool.
const (
	LoginOutcomeSuccess        = "success"
	LoginOutcomeBadCredentials = "bad_credentials"
	LoginOutcomeFault          = "fault"
)

// LoginEvent records one login attempt. Fault-outcome events are written
// before the fault fires so alerts can be correlated with the attempt that
// triggered them.
type LoginEvent struct {
	EventID   string    `json:"id" dynamodbav:"event_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	UserID    string    `json:"user_id,omitempty" dynamodbav:"user_id"`
	Outcome   string    `json:"outcome" dynamodbav:"outcome"`
	RemoteIP  string    `json:"remote_ip,omitempty" dynamodbav:"remote_ip"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
