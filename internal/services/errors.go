// ===============================
// internal/services/errors.go - Service Error Taxonomy
// ===============================

package services

import (
	"errors"
	"fmt"
)

// ErrEpisodeNotFound is returned when a lookup references an id with no row.
var ErrEpisodeNotFound = errors.New("episode not found")

// ValidationError marks a request rejected before touching storage.
// Handlers map it to a 400 response; anything else becomes a 500.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
