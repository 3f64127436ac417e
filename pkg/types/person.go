// Package types defines the core domain types shared across the Kindred
// system: persons, relationships, and their enumerations.
package types

import (
	"strings"
	"time"
)

// Gender is the recorded gender of a person. An empty string means unknown.
type Gender string

// Gender values.
const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderOther   Gender = "OTHER"
	GenderUnknown Gender = ""
)

// Person represents a single individual in a family tree.
// The chart engine treats Person values as immutable; all mutation goes
// through the storage layer.
type Person struct {
	// Core identification fields
	ID        string `json:"id"`         // Unique identifier (format: per:uuid)
	FirstName string `json:"first_name"` // Given name
	LastName  string `json:"last_name"`  // Family name / surname

	// Vital record fields
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`   // nil when unknown
	DateOfPassing *time.Time `json:"date_of_passing,omitempty"` // nil when unknown or living
	IsLiving      bool       `json:"is_living"`
	Gender        Gender     `json:"gender,omitempty"`

	// Presentation and context
	PhotoURL   string `json:"photo_url,omitempty"`
	BirthPlace string `json:"birth_place,omitempty"`

	// Provenance
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns the display name, trimming when either part is missing.
func (p *Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// BirthYear returns the birth year, or 0 when the birth date is unknown.
func (p *Person) BirthYear() int {
	if p.DateOfBirth == nil {
		return 0
	}
	return p.DateOfBirth.Year()
}

// DeathYear returns the year of passing, or 0 when unknown.
func (p *Person) DeathYear() int {
	if p.DateOfPassing == nil {
		return 0
	}
	return p.DateOfPassing.Year()
}

// AgeAt computes the person's age in whole years at the given instant,
// adjusting down by one year when the birthday anniversary has not yet
// occurred in the end year. Returns -1 when the birth date is unknown or
// the instant precedes it.
func (p *Person) AgeAt(at time.Time) int {
	if p.DateOfBirth == nil || at.Before(*p.DateOfBirth) {
		return -1
	}
	born := *p.DateOfBirth
	age := at.Year() - born.Year()
	if at.Month() < born.Month() ||
		(at.Month() == born.Month() && at.Day() < born.Day()) {
		age--
	}
	return age
}

// Lifespan returns the age at death for a deceased person with both dates
// recorded. The second return value is false when either date is missing.
func (p *Person) Lifespan() (int, bool) {
	if p.DateOfBirth == nil || p.DateOfPassing == nil {
		return 0, false
	}
	age := p.AgeAt(*p.DateOfPassing)
	if age < 0 {
		return 0, false
	}
	return age, true
}
