package services

import (
	"errors"
	"fmt"

	"retailpulse/pkg/contracts/domain"
)

// Service errors
var (
	// Dataset errors
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrMetricsNotFound = errors.New("metrics not found")

	// Upload errors
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileValidation      = errors.New("file failed validation")
	ErrEmptyFile           = errors.New("empty file")
)

// FileValidationError carries the load metadata of a rejected upload so the
// handler can return the column-level findings to the client.
type FileValidationError struct {
	Meta *domain.LoadMetadata
}

func (e *FileValidationError) Error() string {
	if e.Meta != nil && len(e.Meta.Validation.Errors) > 0 {
		return fmt.Sprintf("file failed validation: %s", e.Meta.Validation.Errors[0])
	}
	return "file failed validation"
}

func (e *FileValidationError) Unwrap() error {
	return ErrFileValidation
}
