package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")

	ErrBuild                = errors.New("index build failed")
	ErrResource             = errors.New("insufficient local resources")
	ErrModelUnavailable     = errors.New("generation model unavailable")
	ErrGeneration           = errors.New("generation failed")
	ErrInconsistentSnapshot = errors.New("index references unknown chunk")
)

// ApologyMessage is the only failure text shown to end users.
const ApologyMessage = "Произошла ошибка при обработке запроса."

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
