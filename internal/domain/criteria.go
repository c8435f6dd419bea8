package domain

import "strings"

// SearchCriteria is a set of optional substring filters over listing fields.
// Filters are combined with logical AND; an empty field imposes no
// constraint, so the zero value matches every listing.
type SearchCriteria struct {
	Brand        string
	Type         string
	Transmission string
	Color        string
}

func (c SearchCriteria) IsEmpty() bool {
	return c.Brand == "" && c.Type == "" && c.Transmission == "" && c.Color == ""
}

// Matches reports whether the listing satisfies every non-empty filter.
// Comparison is a case-insensitive substring test.
func (c SearchCriteria) Matches(l *Listing) bool {
	return containsFold(l.Brand, c.Brand) &&
		containsFold(l.Type, c.Type) &&
		containsFold(l.Transmission, c.Transmission) &&
		containsFold(l.Color, c.Color)
}

func containsFold(field, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(filter))
}
