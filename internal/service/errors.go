package service

import (
	"errors"
	"fmt"

	"github.com/nurpe/snowops-contracts/internal/repository"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid contract state")
	ErrContractImmutable   = errors.New("contract is immutable")
	ErrUnauthorizedWebhook = errors.New("unauthorized webhook")
	ErrConflict            = errors.New("conflict")
	ErrDependencyFailure   = errors.New("dependency failure")
	ErrPermissionDenied    = errors.New("permission denied")
)

func dependencyError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependencyFailure, op, err)
}

// storeError maps repository failures onto service errors.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %s: %v", ErrConflict, op, err)
	default:
		return dependencyError(op, err)
	}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
