package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/x/term"
	"github.com/mark3labs/estimatr/internal/history"
	"github.com/mark3labs/estimatr/internal/tui"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	city  string
	limit int
	json  bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent estimates",
	Long: `List estimates recorded by previous runs, newest first.

Estimates are stored in the embedded NATS JetStream under the data directory.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyFlags.city, "city", "c", "", "Only show estimates for this city")
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "l", 20, "Number of estimates to show, 0 for all")
	historyCmd.Flags().BoolVar(&historyFlags.json, "json", false, "Print entries as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyFlags.limit < 0 {
		return fmt.Errorf("limit must be >= 0 (0 means all)")
	}

	store, closeFn, err := openHistory(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	entries, err := store.List(cmd.Context(), history.ListOptions{
		City:  historyFlags.city,
		Limit: historyFlags.limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if historyFlags.json {
		data, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	width, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || width <= 0 {
		width = 100
	}
	fmt.Print(tui.RenderMarkdown(historyMarkdown(entries), width))
	return nil
}

// historyMarkdown renders entries as a markdown table.
func historyMarkdown(entries []history.Entry) string {
	if len(entries) == 0 {
		return "_No estimates recorded yet._\n"
	}

	var b strings.Builder
	b.WriteString("# Recent estimates\n\n")
	b.WriteString("| Date | Type | Location | Surface | Price |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, e := range entries {
		r := e.Request
		fmt.Fprintf(&b, "| %s | %s | %s, %s | %g m² | %s |\n",
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			mdCell(r.PropertyType), mdCell(r.Neighborhood), mdCell(r.City), r.Surface, mdCell(e.FormattedPrice))
	}
	return b.String()
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

// mdCell keeps a value inside its table cell.
func mdCell(s string) string {
	return cellEscaper.Replace(s)
}
