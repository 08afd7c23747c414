package models

import (
	"strings"

	"gorm.io/gorm"
)

// Tag is a label postings can reference. Tags are mutable and merge with
// last-write-wins semantics, keyed by their natural ID.
type Tag struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Dirty       bool   `json:"dirty"`

	Timestamps
}

func (t *Tag) BeforeSave(_ *gorm.DB) error {
	t.Name = strings.TrimSpace(t.Name)
	return nil
}
