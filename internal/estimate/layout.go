package estimate

// Layout describes the type-dependent inputs of the amenities step.
type Layout struct {
	Floor     bool     // Floor number input is shown
	Amenities []string // One Yes/No control per id, in catalog order
}

// Empty reports whether the step has nothing to ask, in which case an
// empty-state notice is shown instead of controls.
func (l Layout) Empty() bool {
	return !l.Floor && len(l.Amenities) == 0
}

// DeriveLayout computes the amenities step layout for a property type.
// Unknown or empty types yield an empty layout.
func DeriveLayout(cat Catalog, propertyType string) Layout {
	if propertyType == "" || !cat.HasType(propertyType) {
		return Layout{}
	}
	return Layout{
		Floor:     cat.HasFloor(propertyType),
		Amenities: cat.Amenities(propertyType),
	}
}

// applyLayout reconciles the submission with a layout: amenity keys become
// exactly the applicable set (new keys default to false, existing values are
// kept) and the floor is zeroed when it does not apply.
func applyLayout(sub *Submission, l Layout) {
	next := make(map[string]bool, len(l.Amenities))
	for _, id := range l.Amenities {
		next[id] = sub.Amenities[id]
	}
	sub.Amenities = next
	if !l.Floor {
		sub.Floor = 0
	}
}
