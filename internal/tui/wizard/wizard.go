// Package wizard is the interactive four-step estimate form.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/history"
	"github.com/mark3labs/estimatr/internal/logger"
	"github.com/mark3labs/estimatr/internal/predict"
	"github.com/mark3labs/estimatr/internal/refdata"
	"github.com/mark3labs/estimatr/internal/state"
	"github.com/mark3labs/estimatr/internal/tui/theme"
)

// ErrCancelled is returned by Run when the user leaves without an estimate.
var ErrCancelled = errors.New("wizard cancelled by user")

// Predictor submits a prediction request.
type Predictor interface {
	Predict(ctx context.Context, req estimate.Request) (*predict.Result, error)
}

// Recorder stores successful estimates.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

// Options wires the wizard to its collaborators.
type Options struct {
	Catalog   *refdata.Catalog // nil when reference data could not be loaded
	LoadErr   error            // why Catalog is nil
	Predictor Predictor
	Recorder  Recorder // optional
	Endpoint  string   // shown in diagnostics
	DataDir   string   // preferences location; empty disables them
}

// Result is the last successful estimate of a wizard run.
type Result struct {
	Request    estimate.Request
	Prediction *predict.Result
}

// WizardModel is the main BubbleTea model for the estimate wizard.
type WizardModel struct {
	ctx    context.Context
	opts   Options
	core   *estimate.Wizard
	prefs  *state.Preferences
	width  int
	height int

	cancelled  bool
	submitting bool
	submitErr  error   // diagnostic of the last failed submission
	result     *Result // set while the result view is shown
	last       *Result // last successful estimate of the run
	spinner    spinner.Model

	typeStep      *TypeStep
	locationStep  *LocationStep
	detailsStep   *DetailsStep
	amenitiesStep *AmenitiesStep
}

// New creates the wizard model. ctx bounds prediction calls.
func New(ctx context.Context, opts Options) *WizardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles().Selected

	m := &WizardModel{
		ctx:     ctx,
		opts:    opts,
		prefs:   &state.Preferences{},
		spinner: s,
		width:   100,
		height:  30,
	}
	if opts.DataDir != "" {
		m.prefs = state.Load(opts.DataDir)
	}
	if opts.Catalog != nil {
		m.core = estimate.NewWizard(opts.Catalog)
		m.buildSteps()
	}
	return m
}

// Run starts a standalone BubbleTea program and returns the last estimate.
func Run(ctx context.Context, opts Options) (*Result, error) {
	m := New(ctx, opts)

	finalModel, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	wiz, ok := finalModel.(*WizardModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if wiz.opts.Catalog == nil {
		return nil, wiz.opts.LoadErr
	}
	if wiz.last == nil {
		return nil, ErrCancelled
	}
	return wiz.last, nil
}

func (m *WizardModel) buildSteps() {
	cat := m.opts.Catalog
	m.typeStep = NewTypeStep(m.core, cat, m.prefs.LastType)
	m.locationStep = NewLocationStep(m.core, cat, m.prefs.LastCity)
	m.detailsStep = NewDetailsStep(m.core, cat)
	m.amenitiesStep = NewAmenitiesStep(m.core, cat)
	m.updateStepSizes()
}

// Init initializes the wizard model.
func (m *WizardModel) Init() tea.Cmd {
	return nil
}

// Step returns the active step; zero when reference data is missing.
func (m *WizardModel) Step() estimate.Step {
	if m.core == nil {
		return 0
	}
	return m.core.Step()
}

// Cancelled reports whether the user quit before finishing.
func (m *WizardModel) Cancelled() bool { return m.cancelled }

// Submitting reports whether a prediction request is in flight.
func (m *WizardModel) Submitting() bool { return m.submitting }

// Core exposes the wizard state.
func (m *WizardModel) Core() *estimate.Wizard { return m.core }

// Update handles messages for the wizard.
func (m *WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateStepSizes()
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = m.last == nil
			return m, tea.Quit
		}
		if m.core == nil {
			switch msg.String() {
			case "q", "esc":
				m.cancelled = true
				return m, tea.Quit
			}
			return m, nil
		}
		if m.submitting {
			return m, nil
		}
		if m.result != nil {
			return m, m.updateResult(msg)
		}
		if msg.String() == "esc" {
			return m, m.back()
		}

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case NextMsg:
		if m.core == nil {
			return m, nil
		}
		return m, m.forward()

	case PredictionMsg:
		return m, m.handlePrediction(msg)
	}

	if m.core == nil || m.submitting || m.result != nil {
		return m, nil
	}
	return m, m.updateCurrentStep(msg)
}

func (m *WizardModel) updateCurrentStep(msg tea.Msg) tea.Cmd {
	switch m.core.Step() {
	case estimate.StepType:
		return m.typeStep.Update(msg)
	case estimate.StepLocation:
		return m.locationStep.Update(msg)
	case estimate.StepDetails:
		return m.detailsStep.Update(msg)
	case estimate.StepAmenities:
		return m.amenitiesStep.Update(msg)
	}
	return nil
}

// initCurrentStep runs the entry setup of the active step component.
func (m *WizardModel) initCurrentStep() tea.Cmd {
	switch m.core.Step() {
	case estimate.StepLocation:
		return m.locationStep.Init()
	case estimate.StepDetails:
		return m.detailsStep.Init()
	case estimate.StepAmenities:
		return m.amenitiesStep.Init()
	}
	return nil
}

// back leaves the wizard on the first step and retreats otherwise.
func (m *WizardModel) back() tea.Cmd {
	if m.core.Step() == estimate.FirstStep {
		m.cancelled = m.last == nil
		return tea.Quit
	}
	m.submitErr = nil
	m.core.Retreat()
	return m.initCurrentStep()
}

// forward advances, or submits from the last step. Both re-check the
// predicates against current state.
func (m *WizardModel) forward() tea.Cmd {
	if m.submitting || m.result != nil {
		return nil
	}
	if m.core.Step() == estimate.LastStep {
		return m.submit()
	}
	if !m.core.Advance() {
		return nil
	}
	return m.initCurrentStep()
}

func (m *WizardModel) submit() tea.Cmd {
	if !m.core.CanSubmit() {
		return nil
	}
	req, err := m.core.Request()
	if err != nil {
		m.submitErr = err
		return nil
	}

	m.submitting = true
	m.submitErr = nil
	logger.Info("Submitting estimate for %s in %s/%s", req.PropertyType, req.City, req.Neighborhood)

	ctx, predictor := m.ctx, m.opts.Predictor
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, err := predictor.Predict(ctx, req)
		return PredictionMsg{Request: req, Result: res, Err: err}
	})
}

// record appends a shown estimate to the history. It runs after the result
// is on screen so a slow publish never holds the spinner.
func (m *WizardModel) record(msg PredictionMsg) tea.Cmd {
	recorder := m.opts.Recorder
	if recorder == nil {
		return nil
	}
	ctx := m.ctx
	entry := history.Entry{
		Request:        msg.Request,
		FormattedPrice: msg.Result.FormattedPrice,
		PredictedPrice: msg.Result.PredictedPrice,
	}
	return func() tea.Msg {
		if _, err := recorder.Record(ctx, entry); err != nil {
			logger.Warn("Failed to record estimate: %v", err)
		}
		return nil
	}
}

func (m *WizardModel) handlePrediction(msg PredictionMsg) tea.Cmd {
	m.submitting = false
	if msg.Err != nil {
		logger.Warn("Prediction failed: %v", msg.Err)
		m.submitErr = msg.Err
		return m.amenitiesStep.syncFocus()
	}

	m.result = &Result{Request: msg.Request, Prediction: msg.Result}
	m.last = m.result
	m.savePreferences(msg.Request)
	return m.record(msg)
}

func (m *WizardModel) savePreferences(req estimate.Request) {
	if m.opts.DataDir == "" {
		return
	}
	m.prefs.LastType = req.PropertyType
	m.prefs.LastCity = req.City
	if err := state.Save(m.opts.DataDir, m.prefs); err != nil {
		logger.Warn("Failed to save preferences: %v", err)
	}
}

// updateResult handles the result view: a new estimate or quit.
func (m *WizardModel) updateResult(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "n":
		m.result = nil
		m.submitErr = nil
		m.core.Reset()
		m.buildSteps()
		return nil
	case "q", "esc":
		return tea.Quit
	}
	return nil
}

func (m *WizardModel) updateStepSizes() {
	if m.core == nil {
		return
	}
	w, h := m.contentSize()
	m.typeStep.SetSize(w, h)
	m.locationStep.SetSize(w, h)
	m.detailsStep.SetSize(w, h)
	m.amenitiesStep.SetSize(w, h)
}

// contentSize is the space inside the modal container.
func (m *WizardModel) contentSize() (int, int) {
	return max(m.modalWidth()-6, 40), max(m.height-12, 10)
}

func (m *WizardModel) modalWidth() int {
	return min(max(m.width-10, 60), 100)
}

// View renders the wizard UI.
func (m *WizardModel) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.Render())

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// Render returns the modal content without screen placement.
func (m *WizardModel) Render() string {
	s := styles()

	if m.core == nil {
		return m.renderMissingData()
	}

	var sections []string
	sections = append(sections, m.renderTitle(), m.renderProgress(), "")

	switch {
	case m.result != nil:
		sections = append(sections, m.renderResult())
	case m.submitting:
		sections = append(sections, m.spinner.View()+" "+s.Text.Render("Estimating price..."))
	default:
		sections = append(sections, m.currentStepView())
		if m.submitErr != nil {
			sections = append(sections, "", s.Error.Render("✗ "+m.diagnose(m.submitErr)))
			sections = append(sections, s.Muted.Render("Your answers are kept. Press enter to try again."))
		}
		sections = append(sections, "", m.renderButtons())
	}

	return s.ModalContainer.Width(m.modalWidth()).Render(strings.Join(sections, "\n"))
}

func (m *WizardModel) currentStepView() string {
	switch m.core.Step() {
	case estimate.StepType:
		return m.typeStep.View()
	case estimate.StepLocation:
		return m.locationStep.View()
	case estimate.StepDetails:
		return m.detailsStep.View()
	case estimate.StepAmenities:
		return m.amenitiesStep.View()
	}
	return ""
}

func (m *WizardModel) renderTitle() string {
	step := m.core.Step()
	title := fmt.Sprintf("Property Estimate - Step %d of %d: %s", step, len(estimate.Steps), step)
	if m.result != nil {
		title = "Property Estimate - Result"
	}
	return styles().ModalTitle.Render(title)
}

// renderProgress draws one marker per step: completed steps are checked and
// the active step is tinted by how far along the run is.
func (m *WizardModel) renderProgress() string {
	s := styles()
	t := theme.Current()
	active := m.core.Step()

	parts := make([]string, 0, len(estimate.Steps))
	for _, step := range estimate.Steps {
		switch {
		case m.core.Completed(step) || m.result != nil:
			parts = append(parts, s.Completed.Render(markCompleted+" "+step.String()))
		case step == active:
			pos := float64(step-estimate.FirstStep) / float64(estimate.LastStep-estimate.FirstStep)
			color := theme.InterpolateColor(t.Primary, t.Secondary, pos)
			parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(markSelected+" "+step.String()))
		default:
			parts = append(parts, s.Muted.Render(markUnselected+" "+step.String()))
		}
	}
	return strings.Join(parts, s.Muted.Render(" ─ "))
}

func (m *WizardModel) renderButtons() string {
	step := m.core.Step()

	var buttons []Button
	switch step {
	case estimate.FirstStep:
		buttons = CreateCancelNextButtons(m.core.CanAdvance(), "Next →")
	case estimate.LastStep:
		buttons = CreateBackNextButtons(m.core.CanSubmit(), "Get Estimate")
	default:
		buttons = CreateBackNextButtons(m.core.CanAdvance(), "Next →")
	}

	bar := NewButtonBar(buttons)
	bar.SetWidth(m.modalWidth() - 6)
	return bar.Render()
}

func (m *WizardModel) renderResult() string {
	s := styles()
	cat := m.opts.Catalog
	req := m.result.Request

	var b strings.Builder
	b.WriteString(s.Label.Render("Estimated price"))
	b.WriteString("\n\n  ")
	b.WriteString(s.Price.Render(m.result.Prediction.FormattedPrice))
	b.WriteString("\n\n")
	b.WriteString(s.Muted.Render(fmt.Sprintf("%s · %s, %s · %s m²",
		cat.TypeLabel(req.PropertyType), req.Neighborhood, req.City,
		formatFloat(&req.Surface))))
	b.WriteString("\n\n")
	b.WriteString(renderHintBar("n", "new estimate", "q", "quit"))
	return b.String()
}

func (m *WizardModel) renderMissingData() string {
	s := styles()
	width := m.modalWidth()

	msg := "Reference data unavailable"
	if m.opts.LoadErr != nil {
		msg += ": " + m.opts.LoadErr.Error()
	}

	var b strings.Builder
	b.WriteString(s.Banner.Width(width).Render(msg))
	b.WriteString("\n\n")
	b.WriteString(s.Muted.Render("The estimate form cannot be shown. Check the reference_data setting or run `estimatr doctor`."))
	b.WriteString("\n\n")
	b.WriteString(renderHintBar("q", "quit"))
	return b.String()
}

// diagnose turns a submission error into a message for the user.
func (m *WizardModel) diagnose(err error) string {
	var se *predict.StatusError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("The prediction service rejected the request (HTTP %d).", se.Code)
	case errors.Is(err, predict.ErrMalformedResponse):
		return "The prediction service sent a response that could not be read."
	case errors.Is(err, estimate.ErrIncomplete):
		return "Some answers are missing. Go back and complete every step."
	case m.opts.Endpoint != "":
		return fmt.Sprintf("Could not reach the prediction service at %s.", m.opts.Endpoint)
	default:
		return "Could not reach the prediction service."
	}
}

var _ tea.Model = (*WizardModel)(nil)
