package estimate

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownType         = errors.New("unknown property type")
	ErrUnknownNeighborhood = errors.New("neighborhood does not belong to city")
	ErrNotApplicable       = errors.New("amenity not applicable to property type")
	ErrIncomplete          = errors.New("submission is incomplete")
)

// Step is a wizard step index, 1-based.
type Step int

const (
	StepType      Step = iota + 1 // Property type selection
	StepLocation                  // City and neighborhood
	StepDetails                   // Surface and room counts
	StepAmenities                 // Floor, amenities, submission
)

// FirstStep and LastStep bound the linear flow.
const (
	FirstStep = StepType
	LastStep  = StepAmenities
)

// Steps lists every step in order.
var Steps = []Step{StepType, StepLocation, StepDetails, StepAmenities}

func (s Step) String() string {
	switch s {
	case StepType:
		return "Property Type"
	case StepLocation:
		return "Location"
	case StepDetails:
		return "Details"
	case StepAmenities:
		return "Amenities"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Direction of a step transition.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Transition is the pure step function. Forward moves only when the current
// step is valid and is not the last one; Backward moves only above the first
// step. The bool reports whether the step changed.
func Transition(step Step, valid bool, dir Direction) (Step, bool) {
	switch dir {
	case Forward:
		if !valid || step < FirstStep || step >= LastStep {
			return step, false
		}
		return step + 1, true
	case Backward:
		if step <= FirstStep || step > LastStep {
			return step, false
		}
		return step - 1, true
	}
	return step, false
}

// TypeChosen is the step 1 predicate.
func TypeChosen(sub *Submission) bool {
	return sub.PropertyType != ""
}

// LocationChosen is the step 2 predicate: both values set and the
// neighborhood belongs to the city.
func LocationChosen(cat Catalog, sub *Submission) bool {
	if sub.City == "" || sub.Neighborhood == "" {
		return false
	}
	return slices.Contains(cat.Neighborhoods(sub.City), sub.Neighborhood)
}

// DetailsComplete is the step 3 predicate: a positive surface, plus both
// room counts unless the property type has none.
func DetailsComplete(cat Catalog, sub *Submission) bool {
	if sub.Surface == nil || *sub.Surface <= 0 {
		return false
	}
	if cat.OmitsBedrooms(sub.PropertyType) {
		return true
	}
	return sub.Bedrooms != nil && sub.Bathrooms != nil
}

// Ready reports whether every step predicate holds.
func Ready(cat Catalog, sub *Submission) bool {
	return TypeChosen(sub) && LocationChosen(cat, sub) && DetailsComplete(cat, sub)
}

// StepValid evaluates the predicate gating a step. The last step has no
// predicate of its own; it is valid when the whole submission is.
func StepValid(cat Catalog, sub *Submission, step Step) bool {
	switch step {
	case StepType:
		return TypeChosen(sub)
	case StepLocation:
		return LocationChosen(cat, sub)
	case StepDetails:
		return DetailsComplete(cat, sub)
	case StepAmenities:
		return Ready(cat, sub)
	}
	return false
}

// Wizard owns the state of one wizard run: the current step, the completed
// markers and the submission. It is not safe for concurrent use; the UI
// event loop is its only caller.
type Wizard struct {
	cat       Catalog
	step      Step
	completed map[Step]bool
	sub       *Submission
	layout    Layout
}

// NewWizard starts a run at the first step with an empty submission.
func NewWizard(cat Catalog) *Wizard {
	w := &Wizard{cat: cat}
	w.Reset()
	return w
}

// Reset discards the run, as a reload would.
func (w *Wizard) Reset() {
	w.step = FirstStep
	w.completed = make(map[Step]bool)
	w.sub = NewSubmission()
	w.layout = Layout{}
}

// Step returns the active step.
func (w *Wizard) Step() Step { return w.step }

// Completed reports whether s was left forward and not revisited since.
func (w *Wizard) Completed(s Step) bool { return w.completed[s] }

// Layout returns the amenities layout derived when the last step was entered.
func (w *Wizard) Layout() Layout { return w.layout }

// Submission returns a copy of the submission.
func (w *Wizard) Submission() *Submission { return w.sub.Clone() }

// CanAdvance recomputes the active step predicate from current field state.
func (w *Wizard) CanAdvance() bool {
	return StepValid(w.cat, w.sub, w.step)
}

// CanSubmit reports whether the run is on the last step with a complete submission.
func (w *Wizard) CanSubmit() bool {
	return w.step == LastStep && Ready(w.cat, w.sub)
}

// Advance leaves the active step when its predicate holds and runs the
// setup of the step being entered. It returns false and changes nothing
// otherwise.
func (w *Wizard) Advance() bool {
	next, ok := Transition(w.step, w.CanAdvance(), Forward)
	if !ok {
		return false
	}
	w.completed[w.step] = true
	w.step = next
	w.enter(next)
	return true
}

// Retreat goes back one step. It returns false on the first step.
func (w *Wizard) Retreat() bool {
	prev, ok := Transition(w.step, true, Backward)
	if !ok {
		return false
	}
	delete(w.completed, w.step)
	w.step = prev
	delete(w.completed, prev)
	return true
}

func (w *Wizard) enter(s Step) {
	switch s {
	case StepDetails:
		if w.cat.OmitsBedrooms(w.sub.PropertyType) {
			zero := 0
			w.sub.Bedrooms = &zero
			zeroBath := 0
			w.sub.Bathrooms = &zeroBath
		}
	case StepAmenities:
		w.layout = DeriveLayout(w.cat, w.sub.PropertyType)
		applyLayout(w.sub, w.layout)
	}
}

// SelectType sets the property type. Changing it purges amenity flags and
// the floor. Room counts survive only between two types that both have
// bedrooms; otherwise they are re-entered.
func (w *Wizard) SelectType(id string) error {
	if !w.cat.HasType(id) {
		return fmt.Errorf("%w: %q", ErrUnknownType, id)
	}
	prev := w.sub.PropertyType
	if id == prev {
		return nil
	}
	w.sub.PropertyType = id
	w.sub.Amenities = make(map[string]bool)
	w.sub.Floor = 0
	if w.cat.OmitsBedrooms(prev) || w.cat.OmitsBedrooms(id) {
		w.sub.Bedrooms = nil
		w.sub.Bathrooms = nil
	}
	w.layout = Layout{}
	return nil
}

// SelectCity sets the city. Choosing a different city clears the neighborhood.
func (w *Wizard) SelectCity(city string) {
	if city == w.sub.City {
		return
	}
	w.sub.City = city
	w.sub.Neighborhood = ""
}

// SelectNeighborhood sets the neighborhood, which must belong to the
// selected city. An empty value clears it.
func (w *Wizard) SelectNeighborhood(n string) error {
	if n != "" && !slices.Contains(w.cat.Neighborhoods(w.sub.City), n) {
		return fmt.Errorf("%w: %q not in %q", ErrUnknownNeighborhood, n, w.sub.City)
	}
	w.sub.Neighborhood = n
	return nil
}

// SetSurface mirrors the raw surface input; unusable input clears the value.
func (w *Wizard) SetSurface(raw string) {
	if v, ok := ParseSurface(raw); ok {
		w.sub.Surface = &v
		return
	}
	w.sub.Surface = nil
}

// SetBedrooms mirrors the raw bedroom count input.
func (w *Wizard) SetBedrooms(raw string) {
	w.sub.Bedrooms = countPtr(raw)
}

// SetBathrooms mirrors the raw bathroom count input.
func (w *Wizard) SetBathrooms(raw string) {
	w.sub.Bathrooms = countPtr(raw)
}

// SetFloor mirrors the raw floor input and returns the coerced value.
func (w *Wizard) SetFloor(raw string) int {
	w.sub.Floor = ParseFloor(raw)
	return w.sub.Floor
}

// SetAmenity sets one amenity flag. Only ids of the current layout are accepted.
func (w *Wizard) SetAmenity(id string, on bool) error {
	if _, ok := w.sub.Amenities[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotApplicable, id)
	}
	w.sub.Amenities[id] = on
	return nil
}

// Request builds the prediction request from a complete submission.
func (w *Wizard) Request() (Request, error) {
	if !Ready(w.cat, w.sub) {
		return Request{}, ErrIncomplete
	}
	return BuildRequest(w.cat, w.sub), nil
}

func countPtr(raw string) *int {
	if v, ok := ParseCount(raw); ok {
		return &v
	}
	return nil
}
