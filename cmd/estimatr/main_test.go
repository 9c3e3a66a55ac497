package main

import (
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/history"
	"github.com/stretchr/testify/assert"
)

func TestHistoryMarkdown(t *testing.T) {
	assert.Contains(t, historyMarkdown(nil), "No estimates recorded yet")

	md := historyMarkdown([]history.Entry{{
		Timestamp: time.Date(2026, 3, 1, 10, 30, 0, 0, time.Local),
		Request: estimate.Request{
			PropertyType: "Villa",
			City:         "Rabat",
			Neighborhood: "Souissi",
			Surface:      320.5,
		},
		FormattedPrice: "4,100,000.00 MAD",
	}})
	assert.Contains(t, md, "| Date | Type | Location | Surface | Price |")
	assert.Contains(t, md, "| 2026-03-01 10:30 | Villa | Souissi, Rabat | 320.5 m² | 4,100,000.00 MAD |")

	md = historyMarkdown([]history.Entry{{
		Timestamp: time.Date(2026, 3, 1, 10, 30, 0, 0, time.Local),
		Request: estimate.Request{
			PropertyType: "Villa",
			City:         "Rabat|Salé",
			Neighborhood: "Hay\nRiad",
			Surface:      200,
		},
		FormattedPrice: "3,000,000 | MAD",
	}})
	assert.Contains(t, md, `| 2026-03-01 10:30 | Villa | Hay Riad, Rabat\|Salé | 200 m² | 3,000,000 \| MAD |`)
	lines := strings.Split(strings.TrimSpace(md), "\n")
	row := lines[len(lines)-1]
	assert.Equal(t, 6, strings.Count(row, "|")-strings.Count(row, `\|`), "row keeps five cells")
}

func TestRootCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"estimate", "setup", "doctor", "history", "serve", "mcp"} {
		assert.True(t, names[want], "missing %s command", want)
	}
	assert.NotNil(t, rootCmd.RunE, "bare estimatr runs the form")
}
