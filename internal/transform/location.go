// Package transform implements the enrichment stage: city→postal-code
// resolution and rule-based annotation of job descriptions.
package transform

import "strings"

// Location is the outcome of resolving a city name. Absence is a valid
// outcome, not an error: both codes stay nil on a lookup miss.
type Location struct {
	// City is upper-cased whenever the input city was non-empty, even when
	// the lookup misses. An empty input is returned untouched.
	City       string
	PostalCode *string
	RegionCode *string
}

// ResolveLocation normalizes city and looks up its postal code. On a hit, the
// region code is "FR-" plus the first two characters of the postal code; a
// postal code shorter than two characters yields no region code.
func ResolveLocation(city string, postalByCity map[string]string) Location {
	if city == "" {
		return Location{}
	}

	loc := Location{City: strings.ToUpper(city)}

	postal, ok := postalByCity[loc.City]
	if !ok {
		return loc
	}

	loc.PostalCode = &postal
	if len(postal) >= 2 {
		region := "FR-" + postal[:2]
		loc.RegionCode = &region
	}
	return loc
}
