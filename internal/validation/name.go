package validation

import (
	"fmt"
	"strings"
)

// ValidateDisplayName validates an optional assessment display name.
func ValidateDisplayName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return nil
	}

	if len(trimmed) > 100 {
		return fmt.Errorf("%w: display_name is too long (max 100 characters)", ErrInvalid)
	}

	return nil
}
