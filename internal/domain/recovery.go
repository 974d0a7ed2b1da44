package domain

// RecoveryToken is a single-use password-recovery token delivered by email.
// ExpiresAt doubles as the DynamoDB TTL attribute.
type RecoveryToken struct {
	UserID    string `dynamodbav:"user_id"`
	Token     string `dynamodbav:"token"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}
