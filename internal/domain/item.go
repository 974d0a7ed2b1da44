package domain

import "time"

type Item struct {
	ItemID      string     `json:"id" dynamodbav:"item_id"`
	Title       string     `json:"title" dynamodbav:"title"`
	Description string     `json:"description,omitempty" dynamodbav:"description"`
	OwnerID     string     `json:"owner_id" dynamodbav:"owner_id"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type ItemInput struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=255"`
}
