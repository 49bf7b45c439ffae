package store

import "errors"

// Result reports whether an update or delete matched a record
type Result int

const (
	// Applied means a record with the key was found and changed
	Applied Result = iota
	// NotFound means no record had the key; nothing was written
	NotFound
)

func (r Result) String() string {
	if r == NotFound {
		return "notfound"
	}
	return "applied"
}

var (
	// ErrConflict is returned when another writer changed a key since this
	// process last read it. Reload and retry.
	ErrConflict = errors.New("E_VERSION")
	// ErrClosed is returned by operations on a closed store
	ErrClosed = errors.New("store closed")
	// ErrInvalidImport is returned when an import document lacks version or data
	ErrInvalidImport = errors.New("invalid import document: version and data are required")

	errNull = errors.New("null document")
)
