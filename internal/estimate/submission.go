// Package estimate holds the wizard core: the submission being built, the
// per-step validation predicates, the step transitions and the derivation of
// the type-dependent fields. It has no UI dependencies.
package estimate

import (
	"maps"
	"strconv"
	"strings"
)

// Catalog is the reference data the wizard core needs.
// *refdata.Catalog implements it.
type Catalog interface {
	HasType(id string) bool
	Neighborhoods(city string) []string
	Amenities(propertyType string) []string
	AllAmenities() []string
	HasFloor(propertyType string) bool
	OmitsBedrooms(propertyType string) bool
}

// Submission is the record built across the wizard steps.
// Numeric fields are nil until the user has provided a usable value.
type Submission struct {
	PropertyType string
	City         string
	Neighborhood string
	Surface      *float64
	Bedrooms     *int
	Bathrooms    *int
	Floor        int
	Amenities    map[string]bool
}

// NewSubmission returns an empty submission.
func NewSubmission() *Submission {
	return &Submission{Amenities: make(map[string]bool)}
}

// Clone returns a deep copy.
func (s *Submission) Clone() *Submission {
	c := *s
	c.Surface = clonePtr(s.Surface)
	c.Bedrooms = clonePtr(s.Bedrooms)
	c.Bathrooms = clonePtr(s.Bathrooms)
	c.Amenities = maps.Clone(s.Amenities)
	if c.Amenities == nil {
		c.Amenities = make(map[string]bool)
	}
	return &c
}

// ParseSurface parses a surface in square meters. Only finite values > 0 are accepted.
func ParseSurface(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 || v != v || v > 1e12 {
		return 0, false
	}
	return v, true
}

// ParseCount parses a room count. Only integers >= 0 are accepted.
func ParseCount(raw string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ParseFloor parses a floor number from its leading digits. It never fails:
// empty, non-numeric or negative input is coerced to 0.
func ParseFloor(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	v, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	return v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
