package dynamo

// DynamoDB attribute names used in update expressions across repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldIsActive  = "is_active"
	fieldDeletedAt = "deleted_at"
	fieldUpdatedAt = "updated_at"
)
