package model

import (
	"errors"
	"fmt"
)

// ErrValidation marks input rejected before it reaches the store.
var ErrValidation = errors.New("validation error")

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
