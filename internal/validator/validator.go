// Package validator checks incoming files against the per-category upload rules.
package validator

import (
	"errors"
	"fmt"
	"slices"

	"portfolioapi/internal/model"
)

const mib = 1024 * 1024

var (
	// ErrInvalidType means the declared media type is not accepted for the category.
	ErrInvalidType = errors.New("invalid file type")
	// ErrTooLarge means the file exceeds the category's size limit.
	ErrTooLarge = errors.New("file too large")
	// ErrInvalidSize means the declared size is negative.
	ErrInvalidSize = errors.New("invalid file size")
)

// FileDescriptor is what the validator needs to know about an upload.
type FileDescriptor struct {
	MediaType string
	SizeBytes int64
}

// Rule describes what a category accepts.
type Rule struct {
	MediaTypes []string
	MaxBytes   int64
	// Accept is the human readable list shown to users, e.g. "JPG, PNG, or WebP".
	Accept string
}

var imageRule = Rule{
	MediaTypes: []string{"image/jpeg", "image/png", "image/webp"},
	MaxBytes:   5 * mib,
	Accept:     "JPG, PNG, or WebP",
}

var rules = [model.CategoryCount]Rule{
	model.Profile: imageRule,
	model.Resume: {
		MediaTypes: []string{"application/pdf"},
		MaxBytes:   10 * mib,
		Accept:     "PDF",
	},
	model.Project: imageRule,
}

// Rules returns the upload rule for a category.
func Rules(c model.Category) Rule {
	r := rules[c]
	r.MediaTypes = slices.Clone(r.MediaTypes)
	return r
}

// ValidationError is returned by Validate. Kind is one of ErrInvalidType, ErrTooLarge or ErrInvalidSize.
type ValidationError struct {
	Kind     error
	Category model.Category
	Message  string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Kind }

// Validate checks a file descriptor against the rule of its target category.
// The media type is checked before the size.
func Validate(d FileDescriptor, c model.Category) error {
	if !c.Valid() {
		return fmt.Errorf("validate: %w", model.ErrUnknownCategory)
	}
	r := rules[c]
	if !slices.Contains(r.MediaTypes, d.MediaType) {
		return &ValidationError{
			Kind:     ErrInvalidType,
			Category: c,
			Message:  fmt.Sprintf("Invalid file type for %s. Please upload %s files only.", c, r.Accept),
		}
	}
	if d.SizeBytes < 0 {
		return &ValidationError{
			Kind:     ErrInvalidSize,
			Category: c,
			Message:  fmt.Sprintf("Invalid file size %d.", d.SizeBytes),
		}
	}
	if d.SizeBytes > r.MaxBytes {
		return &ValidationError{
			Kind:     ErrTooLarge,
			Category: c,
			Message:  fmt.Sprintf("File too large. Maximum size for %s is %dMB.", c, r.MaxBytes/mib),
		}
	}
	return nil
}
