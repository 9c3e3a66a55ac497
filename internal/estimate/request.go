package estimate

import (
	"fmt"
	"maps"
	"math"

	"github.com/bytedance/sonic"
)

// Wire field names of the prediction request.
const (
	FieldType         = "type_bien"
	FieldCity         = "ville"
	FieldNeighborhood = "quartier"
	FieldSurface      = "surface"
	FieldBedrooms     = "nombre_de_chambres"
	FieldBathrooms    = "nombre_de_salles_de_bain"
	FieldFloor        = "etage"
)

var fixedFields = []string{
	FieldType, FieldCity, FieldNeighborhood, FieldSurface,
	FieldBedrooms, FieldBathrooms, FieldFloor,
}

// Request is the prediction request body. Amenities carries one 0/1 flag
// per amenity id known to the catalog and is flattened into the top-level
// JSON object.
type Request struct {
	PropertyType string
	City         string
	Neighborhood string
	Surface      float64
	Bedrooms     int
	Bathrooms    int
	Floor        int
	Amenities    map[string]int
}

// BuildRequest maps a submission to the wire request. Room counts are 0 for
// types without bedrooms, the floor is 0 for types without floors and
// amenities that do not apply are sent as 0.
func BuildRequest(cat Catalog, sub *Submission) Request {
	req := Request{
		PropertyType: sub.PropertyType,
		City:         sub.City,
		Neighborhood: sub.Neighborhood,
		Amenities:    make(map[string]int),
	}
	if sub.Surface != nil {
		req.Surface = *sub.Surface
	}
	if !cat.OmitsBedrooms(sub.PropertyType) {
		if sub.Bedrooms != nil {
			req.Bedrooms = *sub.Bedrooms
		}
		if sub.Bathrooms != nil {
			req.Bathrooms = *sub.Bathrooms
		}
	}
	if cat.HasFloor(sub.PropertyType) {
		req.Floor = sub.Floor
	}

	applicable := make(map[string]bool)
	for _, id := range cat.Amenities(sub.PropertyType) {
		applicable[id] = true
	}
	for _, id := range cat.AllAmenities() {
		req.Amenities[id] = 0
	}
	for id, on := range sub.Amenities {
		if on && applicable[id] {
			req.Amenities[id] = 1
		}
	}
	return req
}

// Fields returns the flat field map sent on the wire.
func (r Request) Fields() map[string]any {
	m := map[string]any{
		FieldType:         r.PropertyType,
		FieldCity:         r.City,
		FieldNeighborhood: r.Neighborhood,
		FieldSurface:      r.Surface,
		FieldBedrooms:     r.Bedrooms,
		FieldBathrooms:    r.Bathrooms,
		FieldFloor:        r.Floor,
	}
	for id, v := range r.Amenities {
		m[id] = v
	}
	return m
}

// MarshalJSON encodes the request as one flat object with sorted keys.
func (r Request) MarshalJSON() ([]byte, error) {
	return sonic.ConfigStd.Marshal(r.Fields())
}

// UnmarshalJSON decodes a flat request object. Every fixed field is
// required; any other numeric field is read as an amenity flag.
func (r *Request) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := sonic.Unmarshal(data, &m); err != nil {
		return err
	}
	for _, f := range fixedFields {
		if _, ok := m[f]; !ok {
			return fmt.Errorf("missing field %q", f)
		}
	}

	var out Request
	var err error
	if out.PropertyType, err = stringField(m, FieldType); err != nil {
		return err
	}
	if out.City, err = stringField(m, FieldCity); err != nil {
		return err
	}
	if out.Neighborhood, err = stringField(m, FieldNeighborhood); err != nil {
		return err
	}
	surface, ok := m[FieldSurface].(float64)
	if !ok {
		return fmt.Errorf("field %q must be a number", FieldSurface)
	}
	out.Surface = surface
	if out.Bedrooms, err = intField(m, FieldBedrooms); err != nil {
		return err
	}
	if out.Bathrooms, err = intField(m, FieldBathrooms); err != nil {
		return err
	}
	if out.Floor, err = intField(m, FieldFloor); err != nil {
		return err
	}

	rest := maps.Clone(m)
	for _, f := range fixedFields {
		delete(rest, f)
	}
	out.Amenities = make(map[string]int, len(rest))
	for id := range rest {
		v, err := intField(rest, id)
		if err != nil {
			return err
		}
		if v != 0 && v != 1 {
			return fmt.Errorf("field %q must be 0 or 1", id)
		}
		out.Amenities[id] = v
	}

	*r = out
	return nil
}

func stringField(m map[string]any, key string) (string, error) {
	s, ok := m[key].(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string", key)
	}
	return s, nil
}

func intField(m map[string]any, key string) (int, error) {
	f, ok := m[key].(float64)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("field %q must be an integer", key)
	}
	return int(f), nil
}
