// Copyright (c) 2026 Shelfy. All rights reserved.

package author

import "time"

// Author represents a writer whose books appear in the Shelfy catalogue.
type Author struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
	BirthPlace  string     `json:"birth_place,omitempty"`
	Website     string     `json:"website,omitempty"`
	Source      string     `json:"source,omitempty"` // Provenance of the biographical data
	CreatedBy   string     `json:"created_by"`       // ID of the user who registered the record
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Filter holds the parameters for a paginated author search.
type Filter struct {
	Query string // Case-insensitive substring match against first and last name
}

// Global field names for validation
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldDescription = "description"
	FieldImageURL    = "image_url"
	FieldWebsite     = "website"
)
