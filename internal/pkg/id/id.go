package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a ULID string. Used for user, item, and alert event IDs:
// lexicographic order follows creation time, which keeps alert events
// naturally sorted in the archive and makes them safe DynamoDB keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
