package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
)

// DuplicateTitleError reports two vault files that resolve to the same note
// title after extension stripping. The scan that produced it is void: no
// partial vault is returned alongside this error.
type DuplicateTitleError struct {
	Title string
	PathA string
	PathB string
}

func (e *DuplicateTitleError) Error() string {
	return fmt.Sprintf("duplicate note title %q: %s and %s", e.Title, e.PathA, e.PathB)
}
