// Package petstore is an in-memory pet store served over HTTP and documented
// with the openapi generator.
package petstore

import "time"

// Pet is an animal available in the store.
type Pet struct {
	ID int64 `json:"id" example:"1"`
	// Name the pet answers to.
	Name string `json:"name" example:"Rex"`
	// Tag groups pets, e.g. dog or cat.
	Tag *string `json:"tag,omitempty" example:"dog"`
	// Photo is the raw image, base64 encoded in JSON.
	Photo []byte `json:"photo,omitempty"`
	// CreatedAt is set by the store.
	CreatedAt time.Time `json:"createdAt"`
	// Category was the grouping before tags.
	//
	// Deprecated: use Tag.
	Category string `json:"category,omitempty"`
}

// PetList is one page of pets.
type PetList struct {
	Items []Pet `json:"items"`
	// Total number of pets matching the filter.
	Total int `json:"total"`
}

// Event records a change of the store.
type Event struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"`
	Pet  Pet    `json:"pet"`
}

// Event types.
const (
	EventCreated = "created"
	EventDeleted = "deleted"
)
