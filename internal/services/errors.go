package services

import (
	"errors"
	"fmt"

	"github.com/mpmf/NexxtTask/internal/store"
)

// translate maps store sentinels onto service sentinels. what names the
// missing or duplicated resource ("task", "checklist item").
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s %w", what, ErrNotFound)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	case errors.Is(err, store.ErrForeignKey):
		return fmt.Errorf("%w: %s references a missing row", ErrInvalidInput, what)
	}
	return err
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func permissionDenied(msg string) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
}
