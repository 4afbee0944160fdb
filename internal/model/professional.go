// Package model defines the value types shared across the monitoring pipeline.
package model

import "strings"

// Professional is the registry record for one licensed massage therapist.
// A later fetch with the same ProfileID replaces the mutable fields but the
// ProfileID itself never changes.
type Professional struct {
	ProfileID            string             `json:"profile_id"`
	FirstName            string             `json:"first_name"`
	LastName             string             `json:"last_name"`
	CommonFirstName      string             `json:"common_first_name"`
	CommonLastName       string             `json:"common_last_name"`
	RegistrationStatus   string             `json:"registration_status"`
	AuthorizedToPractice bool               `json:"authorized_to_practice"`
	PracticeLocations    []PracticeLocation `json:"practice_locations"`
}

// FullName returns the legal "First Last" form, trimmed.
func (p Professional) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// CommonName returns the informal "First Last" form, trimmed.
func (p Professional) CommonName() string {
	return strings.TrimSpace(p.CommonFirstName + " " + p.CommonLastName)
}

// PracticeLocation is one workplace attached to a professional. Locations are
// deduplicated by (employer name, address) at ingestion and have no lifecycle
// of their own.
type PracticeLocation struct {
	EmployerName string `json:"employer_name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Province     string `json:"province"`
}

// SearchText renders the location as a single query string for the listing
// source, joining the non-empty parts.
func (l PracticeLocation) SearchText() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.EmployerName, l.Address, l.City, l.Province} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
