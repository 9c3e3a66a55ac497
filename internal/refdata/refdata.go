// Package refdata loads the read-only reference catalog that drives the
// estimate wizard: property types, cities, neighborhoods and per-type
// field applicability.
package refdata

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/estimatr/internal/logger"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned when the reference data file does not exist.
	ErrNotFound = errors.New("reference data not found")
	// ErrInvalid is returned when the reference data cannot be parsed or is empty.
	ErrInvalid = errors.New("invalid reference data")
)

// FloorKey is the field name of the floor number. It is handled as its own
// input, never as an amenity toggle.
const FloorKey = "etage"

// DefaultAmenities is the amenity set understood by the prediction service.
// Every one of them is always sent, as 0 when not applicable.
var DefaultAmenities = []string{"terrasse", "garage", "ascenseur", "piscine", "securite"}

var defaultLabels = map[string]string{
	FloorKey:    "Étage",
	"ascenseur": "Ascenseur",
	"terrasse":  "Terrasse",
	"garage":    "Garage",
	"securite":  "Sécurité",
	"piscine":   "Piscine",
}

// PropertyType is a selectable property category.
type PropertyType struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Data is the on-disk shape of the reference data. Field names follow the
// file written by the dataset extraction script.
type Data struct {
	Types                []PropertyType      `json:"types,omitempty" yaml:"types,omitempty"`
	AvailableTypes       []string            `json:"types_biens_disponibles,omitempty" yaml:"types_biens_disponibles,omitempty"`
	Cities               []string            `json:"villes" yaml:"villes"`
	NeighborhoodsByCity  map[string][]string `json:"quartiers_par_ville" yaml:"quartiers_par_ville"`
	TypeFeatures         map[string][]string `json:"type_features" yaml:"type_features"`
	TypesWithFloor       []string            `json:"types_avec_etage" yaml:"types_avec_etage"`
	TypesWithoutBedrooms []string            `json:"types_sans_chambres" yaml:"types_sans_chambres"`
	AmenityLabels        map[string]string   `json:"amenity_labels,omitempty" yaml:"amenity_labels,omitempty"`
}

// Catalog is an immutable, validated view over Data.
type Catalog struct {
	types           []PropertyType
	typeIndex       map[string]int
	cities          []string
	neighborhoods   map[string][]string
	features        map[string][]string
	withFloor       map[string]bool
	withoutBedrooms map[string]bool
	amenities       []string
	labels          map[string]string
}

// Load reads reference data from a .json, .js or .yaml/.yml file.
// A .js file is expected to wrap a JSON object, as in `const DATA = {...};`.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading reference data: %w", err)
	}

	data, err := Parse(filepath.Ext(path), raw)
	if err != nil {
		return nil, err
	}

	cat, err := New(*data)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded reference data from %s: %d types, %d cities", path, len(cat.types), len(cat.cities))
	return cat, nil
}

// Parse decodes raw reference data according to the file extension.
func Parse(ext string, raw []byte) (*Data, error) {
	var data Data
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	case ".js":
		obj, err := stripScript(raw)
		if err != nil {
			return nil, err
		}
		if err := sonic.Unmarshal(obj, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	default:
		if err := sonic.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return &data, nil
}

// stripScript extracts the outermost JSON object from a script assignment.
func stripScript(raw []byte) ([]byte, error) {
	s := string(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no object literal in script", ErrInvalid)
	}
	return []byte(s[start : end+1]), nil
}

// New validates data and builds a Catalog.
func New(data Data) (*Catalog, error) {
	c := &Catalog{
		typeIndex:       make(map[string]int),
		neighborhoods:   make(map[string][]string, len(data.NeighborhoodsByCity)),
		features:        make(map[string][]string, len(data.TypeFeatures)),
		withFloor:       toSet(data.TypesWithFloor),
		withoutBedrooms: toSet(data.TypesWithoutBedrooms),
		labels:          make(map[string]string, len(defaultLabels)),
	}

	types := data.Types
	if len(types) == 0 {
		for _, id := range data.AvailableTypes {
			types = append(types, PropertyType{ID: id})
		}
	}
	for _, pt := range types {
		id := strings.TrimSpace(pt.ID)
		if id == "" {
			continue
		}
		if _, dup := c.typeIndex[id]; dup {
			continue
		}
		if pt.Label == "" {
			pt.Label = humanize(id)
		}
		pt.ID = id
		c.typeIndex[id] = len(c.types)
		c.types = append(c.types, pt)
	}
	if len(c.types) == 0 {
		return nil, fmt.Errorf("%w: no property types", ErrInvalid)
	}

	for _, city := range data.Cities {
		if city = strings.TrimSpace(city); city != "" && !slices.Contains(c.cities, city) {
			c.cities = append(c.cities, city)
		}
	}
	if len(c.cities) == 0 {
		return nil, fmt.Errorf("%w: no cities", ErrInvalid)
	}
	for city, list := range data.NeighborhoodsByCity {
		c.neighborhoods[city] = slices.Clone(list)
	}

	c.amenities = slices.Clone(DefaultAmenities)
	for _, typ := range slices.Sorted(maps.Keys(data.TypeFeatures)) {
		list := data.TypeFeatures[typ]
		if _, ok := c.typeIndex[typ]; !ok {
			logger.Warn("Reference data lists features for unknown property type %q", typ)
		}
		var features []string
		for _, f := range list {
			if f == FloorKey || slices.Contains(features, f) {
				continue
			}
			features = append(features, f)
			if !slices.Contains(c.amenities, f) {
				c.amenities = append(c.amenities, f)
			}
		}
		c.features[typ] = features
	}

	for k, v := range defaultLabels {
		c.labels[k] = v
	}
	for k, v := range data.AmenityLabels {
		c.labels[k] = v
	}

	return c, nil
}

// Types returns the property types in catalog order.
func (c *Catalog) Types() []PropertyType {
	return slices.Clone(c.types)
}

// HasType reports whether id is a known property type.
func (c *Catalog) HasType(id string) bool {
	_, ok := c.typeIndex[id]
	return ok
}

// TypeLabel returns the display label for a property type, or the id itself.
func (c *Catalog) TypeLabel(id string) string {
	if i, ok := c.typeIndex[id]; ok {
		return c.types[i].Label
	}
	return id
}

// Cities returns all city names in catalog order.
func (c *Catalog) Cities() []string {
	return slices.Clone(c.cities)
}

// Neighborhoods returns the neighborhoods of city (nil for unknown cities).
func (c *Catalog) Neighborhoods(city string) []string {
	return slices.Clone(c.neighborhoods[city])
}

// Amenities returns the amenity ids applicable to a property type, in order.
// Unknown types have none.
func (c *Catalog) Amenities(propertyType string) []string {
	return slices.Clone(c.features[propertyType])
}

// AllAmenities returns every amenity id the prediction request carries.
func (c *Catalog) AllAmenities() []string {
	return slices.Clone(c.amenities)
}

// HasFloor reports whether the property type exposes a floor number.
func (c *Catalog) HasFloor(propertyType string) bool {
	return c.withFloor[propertyType]
}

// OmitsBedrooms reports whether the property type has no bedroom/bathroom fields.
func (c *Catalog) OmitsBedrooms(propertyType string) bool {
	return c.withoutBedrooms[propertyType]
}

// Label returns the display label for an amenity id (or FloorKey).
func (c *Catalog) Label(id string) string {
	if l, ok := c.labels[id]; ok {
		return l
	}
	return humanize(id)
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}

// humanize turns "local_commercial" into "Local commercial".
func humanize(id string) string {
	s := strings.ReplaceAll(id, "_", " ")
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
