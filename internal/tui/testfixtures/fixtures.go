package testfixtures

import (
	"testing"

	"github.com/mark3labs/estimatr/internal/refdata"
)

// CatalogData is a small catalog covering every layout shape: a type with
// floor and amenities, one with amenities only, one with nothing to ask and
// one without bedrooms but with a floor.
func CatalogData() refdata.Data {
	return refdata.Data{
		Types: []refdata.PropertyType{
			{ID: "Appartement", Label: "Apartment"},
			{ID: "Villa"},
			{ID: "Terrain", Label: "Land"},
			{ID: "Bureau", Label: "Office"},
		},
		Cities: []string{"Rabat", "Casablanca", "Marrakech"},
		NeighborhoodsByCity: map[string][]string{
			"Rabat":      {"Agdal", "Hassan", "Souissi"},
			"Casablanca": {"Maarif", "Anfa"},
			"Marrakech":  {"Gueliz"},
		},
		TypeFeatures: map[string][]string{
			"Appartement": {"ascenseur", "terrasse"},
			"Villa":       {"garage", "piscine", "securite"},
		},
		TypesWithFloor:       []string{"Appartement", "Bureau"},
		TypesWithoutBedrooms: []string{"Terrain", "Bureau"},
	}
}

// Catalog builds the CatalogData catalog.
func Catalog(t *testing.T) *refdata.Catalog {
	t.Helper()
	cat, err := refdata.New(CatalogData())
	if err != nil {
		t.Fatalf("building test catalog: %v", err)
	}
	return cat
}
