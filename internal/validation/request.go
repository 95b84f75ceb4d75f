package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid marks request validation failures. Callers map it to a client error.
var ErrInvalid = errors.New("invalid request")

// Required rejects empty or whitespace-only identifiers.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	if len(value) > 128 {
		return fmt.Errorf("%w: %s is too long", ErrInvalid, field)
	}
	return nil
}

// ValidateStage accepts free-form stage labels made of lowercase letters,
// digits and underscores.
func ValidateStage(stage string) error {
	err := Required("stage", stage)
	if err != nil {
		return err
	}

	for _, r := range stage {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return fmt.Errorf("%w: stage must contain only lowercase letters, digits and underscores", ErrInvalid)
		}
	}

	return nil
}
