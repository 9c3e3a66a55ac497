package wizard

import (
	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/predict"
)

// NextMsg is sent by a step when the user confirms it. The wizard checks the
// step predicate again before acting on it.
type NextMsg struct{}

// PredictionMsg carries the outcome of a submission.
type PredictionMsg struct {
	Request estimate.Request
	Result  *predict.Result
	Err     error
}

func next() tea.Msg { return NextMsg{} }
