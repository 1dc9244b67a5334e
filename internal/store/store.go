// Package store owns the consistency between full article records and the
// denormalized index list, and the admin directory used for authentication.
package store

import "errors"

// Well-known keys in the key-value store. Every article additionally lives
// under a key equal to its identifier.
const (
	keyIndexList = "SYSTEM_INDEX_LIST"
	keyIndexNum  = "SYSTEM_INDEX_NUM"
	keyAdmins    = "SYSTEM_ADMINS"
)

// ErrNotFound is returned when a record referenced by id or permalink does not
// exist. Handlers translate it into a 404.
var ErrNotFound = errors.New("not found")
