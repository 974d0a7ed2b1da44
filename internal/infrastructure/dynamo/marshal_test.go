package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Recurse-ML/logfire-example/internal/domain"
)

// The listing queries exclude soft-deleted records with
// attribute_not_exists(deleted_at). That only works if live records carry no
// deleted_at attribute at all — a NULL attribute still exists and would make
// every listing come back empty.

func TestMarshalUser_LiveRecordOmitsDeletedAt(t *testing.T) {
	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(&domain.User{
		UserID:       "u1",
		Email:        "bob@example.com",
		PasswordHash: "hash",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	require.NoError(t, err)
	assert.NotContains(t, item, "deleted_at")
	assert.Contains(t, item, "user_id")
	assert.Contains(t, item, "email")
}

func TestMarshalUser_SoftDeletedRecordCarriesDeletedAt(t *testing.T) {
	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(&domain.User{
		UserID:    "u1",
		DeletedAt: &now,
	})

	require.NoError(t, err)
	assert.Contains(t, item, "deleted_at")
}

func TestMarshalItem_LiveRecordOmitsDeletedAt(t *testing.T) {
	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(&domain.Item{
		ItemID:    "i1",
		Title:     "tea kettle",
		OwnerID:   "u1",
		CreatedAt: now,
		UpdatedAt: now,
	})

	require.NoError(t, err)
	assert.NotContains(t, item, "deleted_at")
	assert.Contains(t, item, "item_id")
	assert.Contains(t, item, "owner_id")
}

func TestMarshalItem_SoftDeletedRecordCarriesDeletedAt(t *testing.T) {
	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(&domain.Item{
		ItemID:    "i1",
		DeletedAt: &now,
	})

	require.NoError(t, err)
	assert.Contains(t, item, "deleted_at")
}
