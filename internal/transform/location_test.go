package transform_test

import (
	"testing"

	"jobwarehouse/etl-service/internal/transform"
)

var postalByCity = map[string]string{
	"PARIS":   "75001",
	"LYON":    "69001",
	"ORLÉANS": "45000",
	"ABC":     "1",
}

func TestResolveLocation_Hit(t *testing.T) {
	loc := transform.ResolveLocation("Paris", postalByCity)

	if loc.City != "PARIS" {
		t.Errorf("City = %q, want PARIS", loc.City)
	}
	if loc.PostalCode == nil || *loc.PostalCode != "75001" {
		t.Errorf("PostalCode = %v, want 75001", loc.PostalCode)
	}
	if loc.RegionCode == nil || *loc.RegionCode != "FR-75" {
		t.Errorf("RegionCode = %v, want FR-75", loc.RegionCode)
	}
}

func TestResolveLocation_MissStillUppercases(t *testing.T) {
	loc := transform.ResolveLocation("Atlantis", postalByCity)

	if loc.City != "ATLANTIS" {
		t.Errorf("City = %q, want ATLANTIS even on a lookup miss", loc.City)
	}
	if loc.PostalCode != nil {
		t.Errorf("PostalCode = %v, want nil on miss", *loc.PostalCode)
	}
	if loc.RegionCode != nil {
		t.Errorf("RegionCode = %v, want nil on miss", *loc.RegionCode)
	}
}

func TestResolveLocation_EmptyCity(t *testing.T) {
	loc := transform.ResolveLocation("", postalByCity)

	if loc.City != "" {
		t.Errorf("City = %q, want empty input left untouched", loc.City)
	}
	if loc.PostalCode != nil || loc.RegionCode != nil {
		t.Error("empty city must resolve to nil postal and region codes")
	}
}

func TestResolveLocation_ShortPostalCodeHasNoRegion(t *testing.T) {
	loc := transform.ResolveLocation("abc", postalByCity)

	if loc.PostalCode == nil || *loc.PostalCode != "1" {
		t.Errorf("PostalCode = %v, want 1", loc.PostalCode)
	}
	if loc.RegionCode != nil {
		t.Errorf("RegionCode = %v, want nil for a 1-character postal code", *loc.RegionCode)
	}
}

func TestResolveLocation_AccentedCity(t *testing.T) {
	loc := transform.ResolveLocation("Orléans", postalByCity)

	if loc.City != "ORLÉANS" {
		t.Errorf("City = %q, want ORLÉANS", loc.City)
	}
	if loc.PostalCode == nil || *loc.PostalCode != "45000" {
		t.Errorf("PostalCode = %v, want 45000", loc.PostalCode)
	}
}

func TestResolveLocation_Idempotent(t *testing.T) {
	first := transform.ResolveLocation("Lyon", postalByCity)
	second := transform.ResolveLocation(first.City, postalByCity)

	if second.City != first.City {
		t.Errorf("second City = %q, want %q", second.City, first.City)
	}
	if *second.PostalCode != *first.PostalCode || *second.RegionCode != *first.RegionCode {
		t.Error("resolving an already-resolved city must yield identical codes")
	}
}
