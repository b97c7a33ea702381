package models

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// Category groups streams, live channels and highlights.
type Category struct {
	Base
	Name        string `gorm:"size:100;not null;uniqueIndex" json:"name" validate:"required,max=100"`
	Slug        string `gorm:"size:120;not null;uniqueIndex" json:"slug" validate:"omitempty,max=120"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:500" json:"icon"`
}

func (Category) TableName() string { return "categories" }

// BeforeSave derives the slug from the name when none was supplied.
func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	if strings.TrimSpace(c.Slug) == "" {
		c.Slug = Slugify(c.Name)
	} else {
		c.Slug = Slugify(c.Slug)
	}
	if c.Slug == "" {
		return errors.New("category slug cannot be empty")
	}
	return nil
}

// Slugify lower-cases s and joins its alphanumeric runs with single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// CategoryRef is the populated view of a category embedded in referencing records.
// On input it accepts a bare id (7 or "7") or an object with an id.
type CategoryRef struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name,omitempty"`
	Slug string `gorm:"size:120;not null" json:"slug,omitempty"`
}

func (CategoryRef) TableName() string { return "categories" }

// ErrInvalidCategory is returned when a category reference cannot be decoded.
var ErrInvalidCategory = errors.New("invalid category")

// ParseCategoryID parses a positive category id.
func ParseCategoryID(s string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidCategory
	}
	return uint(id), nil
}

func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ErrInvalidCategory
	}

	switch data[0] {
	case '{':
		var obj struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil || len(obj.ID) == 0 {
			return ErrInvalidCategory
		}
		return r.UnmarshalJSON(obj.ID)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidCategory
		}
		id, err := ParseCategoryID(s)
		if err != nil {
			return err
		}
		*r = CategoryRef{ID: id}
		return nil
	default:
		id, err := ParseCategoryID(string(data))
		if err != nil {
			return err
		}
		*r = CategoryRef{ID: id}
		return nil
	}
}
