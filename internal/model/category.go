package model

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned when a category name is not one of profile, resume or project.
var ErrUnknownCategory = errors.New("unknown category")

// Category identifies which slot of the portfolio a file belongs to.
// It is a closed set; tables keyed by Category are plain arrays of length CategoryCount.
type Category uint8

const (
	Profile Category = iota
	Resume
	Project

	// CategoryCount is the number of categories.
	CategoryCount = 3
)

var categoryNames = [CategoryCount]string{
	Profile: "profile",
	Resume:  "resume",
	Project: "project",
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{Profile, Resume, Project}
}

// ParseCategory converts a category name into a Category.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool { return c < CategoryCount }

// Singleton reports whether the category holds at most one file.
func (c Category) Singleton() bool { return c == Profile || c == Resume }

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", uint8(c))
	}
	return categoryNames[c]
}

// MarshalText encodes the category as its name.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
