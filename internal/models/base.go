// Package models contains the persisted content records and their JSON shapes.
package models

import (
	"time"
)

// Base carries the store-assigned identity and timestamps shared by every record.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// RecordID returns the primary key.
func (b *Base) RecordID() uint { return b.ID }

// Identity exposes the embedded Base so callers can pin it across a body decode.
func (b *Base) Identity() *Base { return b }

// Record is implemented by every resource managed through the generic CRUD surface.
type Record interface {
	RecordID() uint
	Identity() *Base
}

// Defaulter is implemented by records whose omitted fields have non-zero defaults.
// Defaults are applied before the request body is decoded.
type Defaulter interface {
	SetDefaults()
}

// CategoryReferrer is implemented by records that belong to a category.
type CategoryReferrer interface {
	ReferencedCategoryID() uint
}
