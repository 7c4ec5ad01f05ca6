package vfs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrNameRequired    = errors.New("name is required")
	ErrItemNotFound    = errors.New("item not found")
	ErrInvalidView     = errors.New("invalid view")
	ErrInvalidItemKind = errors.New("invalid item kind")
)

// BulkError reports which items of a batch operation failed. The batch keeps
// going past individual failures, so FailedIDs can be any subset.
type BulkError struct {
	FailedIDs []string
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("failed to delete %d item(s): %s", len(e.FailedIDs), strings.Join(e.FailedIDs, ", "))
}
