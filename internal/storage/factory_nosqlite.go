//go:build !sqlite

package storage

import "fmt"

// Without the sqlite tag the kind still parses, but no driver is linked in.
func newSQLiteStore(_ string) (Store, error) {
	return nil, fmt.Errorf("%w: sqlite (binary built without -tags sqlite)", ErrUnknownBackend)
}
