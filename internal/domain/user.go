package domain

import "time"

type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Email        string     `json:"email" dynamodbav:"email"`
	FullName     string     `json:"full_name" dynamodbav:"full_name"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Active       bool       `json:"is_active" dynamodbav:"is_active"`
	Superuser    bool       `json:"is_superuser" dynamodbav:"is_superuser"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FullName  string `json:"full_name"`
	Active    *bool  `json:"is_active"`
	Superuser bool   `json:"is_superuser"`
}

// RegisterRequest is the public signup payload. Unlike CreateUserRequest it
// can never grant superuser.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FullName  *string `json:"full_name"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
	Active    *bool   `json:"is_active"`
	Superuser *bool   `json:"is_superuser"`
}

// UpdateMeRequest restricts self-service profile updates to non-privileged fields.
type UpdateMeRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}
