package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/predict"
	"github.com/mark3labs/estimatr/internal/refdata"
	"github.com/mark3labs/estimatr/internal/state"
	"github.com/mark3labs/estimatr/internal/tui/testfixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness drives a WizardModel synchronously. Commands that finish quickly
// are fed back into Update; timers such as cursor blinks are dropped.
type harness struct {
	t    *testing.T
	m    *WizardModel
	quit bool
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	m := New(context.Background(), opts)
	m.Update(tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})
	return &harness{t: t, m: m}
}

func (h *harness) send(msgs ...tea.Msg) {
	for _, msg := range msgs {
		_, cmd := h.m.Update(msg)
		h.drain(cmd)
	}
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		h.send(testfixtures.Key(k))
	}
}

func (h *harness) typeText(s string) {
	for _, k := range testfixtures.Type(s) {
		h.send(k)
	}
}

func (h *harness) drain(cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case tea.QuitMsg:
			h.quit = true
		case NextMsg, PredictionMsg:
			h.send(msg)
		}
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func (h *harness) screen() string {
	return testfixtures.RenderScreen(h.t, h.m.Render())
}

// fillApartment walks an apartment in Rabat/Agdal to the amenities step.
func (h *harness) fillApartment() {
	h.press("enter") // Appartement
	require.Equal(h.t, estimate.StepLocation, h.m.Step())
	h.press("enter", "enter") // Rabat, Agdal
	require.Equal(h.t, estimate.StepDetails, h.m.Step())
	h.typeText("85")
	h.press("tab")
	h.typeText("2")
	h.press("tab")
	h.typeText("1")
	h.press("enter")
	require.Equal(h.t, estimate.StepAmenities, h.m.Step())
}

func defaultOptions(t *testing.T) (Options, *testfixtures.MockPredictor, *testfixtures.MockRecorder) {
	pred := testfixtures.NewMockPredictor("1,250,000.00 MAD")
	rec := testfixtures.NewMockRecorder()
	return Options{
		Catalog:   testfixtures.Catalog(t),
		Predictor: pred,
		Recorder:  rec,
		Endpoint:  "http://localhost:8000",
	}, pred, rec
}

func TestWizard_InitialStep(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)

	assert.Equal(t, estimate.StepType, h.m.Step())
	screen := h.screen()
	assert.Contains(t, screen, "Step 1 of 4")
	assert.Contains(t, screen, "Apartment")
	assert.Contains(t, screen, "Land")
	assert.Contains(t, screen, "Cancel")
}

func TestWizard_NextDisabledUntilTypeChosen(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)

	h.send(NextMsg{})
	assert.Equal(t, estimate.StepType, h.m.Step(), "cannot advance without a type")

	h.press("down", "space")
	assert.Equal(t, "Villa", h.m.Core().Submission().PropertyType)
	assert.Equal(t, estimate.StepType, h.m.Step(), "space selects without advancing")

	h.send(NextMsg{})
	assert.Equal(t, estimate.StepLocation, h.m.Step())
	assert.True(t, h.m.Core().Completed(estimate.StepType))
}

func TestWizard_EscOnFirstStepCancels(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)

	h.press("esc")
	assert.True(t, h.quit)
	assert.True(t, h.m.Cancelled())
}

func TestWizard_EscRetreats(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)

	h.press("enter")
	require.Equal(t, estimate.StepLocation, h.m.Step())

	h.press("esc")
	assert.Equal(t, estimate.StepType, h.m.Step())
	assert.False(t, h.quit)
	assert.Equal(t, "Appartement", h.m.Core().Submission().PropertyType, "answers survive going back")
}

func TestWizard_LocationFilterAndNeighborhood(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)
	h.press("enter")

	h.typeText("casa")
	screen := h.screen()
	assert.Contains(t, screen, "Casablanca")
	assert.NotContains(t, screen, "Marrakech")

	h.press("enter")
	assert.Equal(t, "Casablanca", h.m.Core().Submission().City)
	assert.Equal(t, estimate.StepLocation, h.m.Step(), "neighborhood still missing")

	h.press("down", "enter")
	assert.Equal(t, "Anfa", h.m.Core().Submission().Neighborhood)
	assert.Equal(t, estimate.StepDetails, h.m.Step())
}

func TestWizard_ChangingCityClearsNeighborhood(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)
	h.press("enter")
	h.press("enter", "space") // Rabat, Agdal
	require.Equal(t, "Agdal", h.m.Core().Submission().Neighborhood)

	h.press("left", "down", "enter") // Casablanca
	assert.Equal(t, "Casablanca", h.m.Core().Submission().City)
	assert.Empty(t, h.m.Core().Submission().Neighborhood)
}

func TestWizard_DetailsValidation(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)
	h.press("enter", "enter", "enter")
	require.Equal(t, estimate.StepDetails, h.m.Step())

	h.typeText("-5")
	assert.Nil(t, h.m.Core().Submission().Surface)
	assert.NotContains(t, h.screen(), "must be", "invalid input only disables Next")
	h.press("enter")
	assert.Equal(t, estimate.StepDetails, h.m.Step())

	h.press("backspace", "backspace")
	h.typeText("70")
	h.press("tab")
	h.typeText("2.5")
	assert.Nil(t, h.m.Core().Submission().Bedrooms)
	assert.NotContains(t, h.screen(), "whole number")
	h.press("enter")
	assert.Equal(t, estimate.StepDetails, h.m.Step())
}

func TestDetailsStep_InputsFitContent(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)

	for _, in := range h.m.detailsStep.inputs {
		assert.Equal(t, numberInputWidth, in.Width())
	}
	assert.Equal(t, numberInputWidth, h.m.amenitiesStep.floor.Width())

	assert.Equal(t, 6, numberWidth(30))
	assert.Equal(t, 4, numberWidth(10))
}

// rowLine returns the single screen line that mentions label.
func rowLine(t *testing.T, screen, label string) string {
	t.Helper()
	var found []string
	for _, line := range strings.Split(screen, "\n") {
		if strings.Contains(line, label) {
			found = append(found, line)
		}
	}
	require.Len(t, found, 1, "expected one row for %q", label)
	return found[0]
}

func countRows(screen, text string) int {
	n := 0
	for _, line := range strings.Split(screen, "\n") {
		if strings.Contains(line, text) {
			n++
		}
	}
	return n
}

// assertToggle checks that exactly one side of the row is marked.
func assertToggle(t *testing.T, line string, on bool) {
	t.Helper()
	assert.Equal(t, 1, strings.Count(line, markSelected), line)
	if on {
		assert.Contains(t, line, markSelected+" Yes")
	} else {
		assert.Contains(t, line, markSelected+" No")
	}
}

func TestWizard_AmenitiesRowsFollowType(t *testing.T) {
	tests := []struct {
		name      string
		walk      func(h *harness)
		floor     bool
		amenities []string
		absent    []string
	}{
		{
			name:      "apartment",
			walk:      func(h *harness) { h.fillApartment() },
			floor:     true,
			amenities: []string{"ascenseur", "terrasse"},
			absent:    []string{"garage", "piscine", "securite"},
		},
		{
			name: "villa",
			walk: func(h *harness) {
				h.press("down", "enter")  // Villa
				h.press("enter", "enter") // Rabat, Agdal
				h.typeText("300")
				h.press("tab")
				h.typeText("4")
				h.press("tab")
				h.typeText("3")
				h.press("enter")
				require.Equal(h.t, estimate.StepAmenities, h.m.Step())
			},
			amenities: []string{"garage", "piscine", "securite"},
			absent:    []string{"ascenseur", "terrasse"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, _, _ := defaultOptions(t)
			cat := opts.Catalog
			h := newHarness(t, opts)
			tt.walk(h)

			screen := h.screen()
			floorLabel := cat.Label(refdata.FloorKey)
			if tt.floor {
				rowLine(t, screen, floorLabel)
			} else {
				assert.NotContains(t, screen, floorLabel)
			}
			assert.Equal(t, len(tt.amenities), countRows(screen, " Yes"))
			for _, id := range tt.amenities {
				assertToggle(t, rowLine(t, screen, cat.Label(id)), false)
			}
			for _, id := range tt.absent {
				assert.NotContains(t, screen, cat.Label(id))
			}

			// Second amenity row: past the floor row when there is one.
			id := tt.amenities[1]
			h.press("down")
			if tt.floor {
				h.press("down")
			}

			h.press("y")
			assertToggle(t, rowLine(t, h.screen(), cat.Label(id)), true)
			assert.True(t, h.m.Core().Submission().Amenities[id])

			h.press("n")
			assertToggle(t, rowLine(t, h.screen(), cat.Label(id)), false)
			assert.False(t, h.m.Core().Submission().Amenities[id])

			req, err := h.m.Core().Request()
			require.NoError(t, err)
			assert.Equal(t, 0, req.Amenities[id])
			for _, other := range tt.amenities {
				assertToggle(t, rowLine(t, h.screen(), cat.Label(other)), false)
			}
		})
	}
}

func TestWizard_LandSkipsRoomsAndAmenities(t *testing.T) {
	opts, pred, _ := defaultOptions(t)
	h := newHarness(t, opts)

	h.press("down", "down", "enter") // Terrain
	h.press("enter", "enter")        // Rabat, Agdal
	require.Equal(t, estimate.StepDetails, h.m.Step())
	screen := h.screen()
	assert.NotContains(t, screen, "Bedrooms")
	assert.Contains(t, screen, "No room counts")

	h.typeText("500")
	h.press("enter")
	require.Equal(t, estimate.StepAmenities, h.m.Step())
	assert.Contains(t, h.screen(), "No additional details for this property type.")

	h.press("enter")
	reqs := pred.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Terrain", reqs[0].PropertyType)
	assert.Equal(t, 500.0, reqs[0].Surface)
	assert.Equal(t, 0, reqs[0].Bedrooms)
	assert.Equal(t, 0, reqs[0].Floor)
}

func TestWizard_SubmitSuccess(t *testing.T) {
	opts, pred, rec := defaultOptions(t)
	opts.DataDir = t.TempDir()
	h := newHarness(t, opts)
	h.fillApartment()

	// floor row first, then ascenseur, terrasse
	h.typeText("3")
	h.press("down", "y")
	screen := h.screen()
	assert.Contains(t, screen, "Get Estimate")

	h.press("enter")
	assert.False(t, h.m.Submitting())

	reqs := pred.Requests()
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.Equal(t, "Appartement", req.PropertyType)
	assert.Equal(t, "Rabat", req.City)
	assert.Equal(t, "Agdal", req.Neighborhood)
	assert.Equal(t, 85.0, req.Surface)
	assert.Equal(t, 2, req.Bedrooms)
	assert.Equal(t, 1, req.Bathrooms)
	assert.Equal(t, 3, req.Floor)
	assert.Equal(t, 1, req.Amenities["ascenseur"])
	assert.Equal(t, 0, req.Amenities["terrasse"])
	assert.Equal(t, 0, req.Amenities["piscine"])

	screen = h.screen()
	assert.Contains(t, screen, "1,250,000.00 MAD")
	assert.Contains(t, screen, "new estimate")

	entries := rec.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "1,250,000.00 MAD", entries[0].FormattedPrice)

	prefs := state.Load(opts.DataDir)
	assert.Equal(t, "Appartement", prefs.LastType)
	assert.Equal(t, "Rabat", prefs.LastCity)

	h.press("q")
	assert.True(t, h.quit)
	assert.False(t, h.m.Cancelled())
}

func TestWizard_RecordsAfterResultShown(t *testing.T) {
	opts, _, rec := defaultOptions(t)
	h := newHarness(t, opts)
	h.fillApartment()

	req, err := h.m.Core().Request()
	require.NoError(t, err)
	h.m.Update(NextMsg{})
	require.True(t, h.m.Submitting())

	_, cmd := h.m.Update(PredictionMsg{
		Request: req,
		Result:  &predict.Result{FormattedPrice: "990,000.00 MAD", PredictedPrice: 990000},
	})
	assert.False(t, h.m.Submitting())
	assert.Contains(t, h.screen(), "990,000.00 MAD")
	assert.Empty(t, rec.Entries(), "recording waits for its own command")

	require.NotNil(t, cmd)
	cmd()
	entries := rec.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "990,000.00 MAD", entries[0].FormattedPrice)
	assert.Equal(t, "Agdal", entries[0].Request.Neighborhood)
}

func TestWizard_NewEstimateResets(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)
	h.fillApartment()
	h.press("enter")
	require.Contains(t, h.screen(), "1,250,000.00 MAD")

	h.press("n")
	assert.Equal(t, estimate.StepType, h.m.Step())
	assert.Empty(t, h.m.Core().Submission().PropertyType)
	assert.Contains(t, h.screen(), "Step 1 of 4")
}

func TestWizard_SubmitFailureKeepsInputs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unreachable", errors.New("dial tcp: connection refused"), "Could not reach the prediction service at http://localhost:8000"},
		{"status", &predict.StatusError{Code: 500, Body: "boom"}, "HTTP 500"},
		{"malformed", predict.ErrMalformedResponse, "could not be read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, pred, rec := defaultOptions(t)
			pred.SetErr(tt.err)
			h := newHarness(t, opts)
			h.fillApartment()

			h.press("enter")
			assert.Equal(t, estimate.StepAmenities, h.m.Step())
			assert.False(t, h.m.Submitting())
			screen := h.screen()
			assert.Contains(t, screen, tt.want)
			assert.Contains(t, screen, "Press enter to try again")
			assert.Empty(t, rec.Entries())

			sub := h.m.Core().Submission()
			require.NotNil(t, sub.Surface)
			assert.Equal(t, 85.0, *sub.Surface)

			pred.SetErr(nil)
			h.press("enter")
			assert.Len(t, pred.Requests(), 2)
			assert.Contains(t, h.screen(), "1,250,000.00 MAD")
		})
	}
}

func TestWizard_IgnoresKeysWhileSubmitting(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)
	h.fillApartment()

	// Enter the submitting state without resolving the command.
	h.m.Update(NextMsg{})
	require.True(t, h.m.Submitting())
	assert.Contains(t, h.screen(), "Estimating price...")

	h.m.Update(testfixtures.Key("esc"))
	assert.Equal(t, estimate.StepAmenities, h.m.Step())

	_, cmd := h.m.Update(NextMsg{})
	assert.Nil(t, cmd, "a second submission is not started")
}

func TestWizard_PreferencesPositionCursor(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	opts.DataDir = t.TempDir()
	require.NoError(t, state.Save(opts.DataDir, &state.Preferences{LastType: "Villa", LastCity: "Marrakech"}))

	h := newHarness(t, opts)
	assert.Empty(t, h.m.Core().Submission().PropertyType, "preferences do not pre-select")

	h.press("enter")
	assert.Equal(t, "Villa", h.m.Core().Submission().PropertyType)
	h.press("enter")
	assert.Equal(t, "Marrakech", h.m.Core().Submission().City)
}

func TestWizard_MissingReferenceData(t *testing.T) {
	h := newHarness(t, Options{LoadErr: errors.New("open refdata.json: no such file")})

	screen := h.screen()
	assert.Contains(t, screen, "Reference data unavailable")
	assert.Contains(t, screen, "no such file")

	h.press("enter")
	assert.False(t, h.quit)
	h.press("q")
	assert.True(t, h.quit)
	assert.True(t, h.m.Cancelled())
}

func TestWizard_CtrlCQuits(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)
	h.press("enter")

	h.press("ctrl+c")
	assert.True(t, h.quit)
	assert.True(t, h.m.Cancelled())
}

func TestButtonBar(t *testing.T) {
	buttons := CreateBackNextButtons(false, "Get Estimate")
	require.Len(t, buttons, 2)
	assert.Equal(t, ButtonDisabled, buttons[1].State)

	buttons = CreateCancelNextButtons(true, "Next →")
	assert.Equal(t, "Cancel", buttons[0].Label)
	assert.Equal(t, ButtonFocused, buttons[1].State)

	bar := NewButtonBar(buttons)
	bar.SetWidth(40)
	out := testfixtures.RenderScreen(t, bar.Render())
	assert.Contains(t, out, "Cancel")
	assert.Contains(t, out, "Next →")
}

func TestSelectList_Scrolls(t *testing.T) {
	l := newSelectList(2)
	l.SetItems([]listItem{{id: "a", label: "A"}, {id: "b", label: "B"}, {id: "c", label: "C"}})

	l.Move(1)
	l.Move(1)
	it, ok := l.Current()
	require.True(t, ok)
	assert.Equal(t, "c", it.id)

	l.Move(1)
	it, _ = l.Current()
	assert.Equal(t, "c", it.id, "cursor stops at the end")

	assert.True(t, l.MoveTo("a"))
	assert.False(t, l.MoveTo("zz"))
}

func TestWizard_PasteIsSanitized(t *testing.T) {
	opts, _, _ := defaultOptions(t)
	h := newHarness(t, opts)
	h.press("enter", "enter", "enter")
	require.Equal(t, estimate.StepDetails, h.m.Step())

	h.send(tea.PasteMsg{Content: "\x1b[1m120\x1b[0m\n"})
	sub := h.m.Core().Submission()
	require.NotNil(t, sub.Surface)
	assert.Equal(t, 120.0, *sub.Surface)
}
