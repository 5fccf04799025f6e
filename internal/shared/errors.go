package shared

import "errors"

// ErrNotFound marks a lookup that found no row. Repositories wrap it so
// callers can match with errors.Is without importing the repo package.
var ErrNotFound = errors.New("not found")
