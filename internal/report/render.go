// Package report renders exposures, detections, patterns and the audit
// trail for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/secretshields/secretshields/internal/audit"
	"github.com/secretshields/secretshields/internal/detectors"
	"github.com/secretshields/secretshields/internal/exposure"
	"github.com/secretshields/secretshields/internal/types"
)

type PrintOptions struct {
	NoColor bool
}

// WriteJSON pretty-prints v.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func render(w io.Writer, header []any, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header...)
	for _, r := range rows {
		if err := table.Append(r); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintExposures renders events as a table followed by a summary of what
// is still exposed.
func PrintExposures(w io.Writer, events []exposure.Event, opts PrintOptions) error {
	if len(events) == 0 {
		fmt.Fprintln(w, "No exposures ✅")
		return nil
	}
	rows := make([][]string, 0, len(events))
	counts := map[types.Severity]int{}
	exposed := 0
	for _, ev := range events {
		if ev.Status == exposure.StatusExposed {
			exposed++
			counts[ev.Severity]++
		}
		rows = append(rows, []string{
			ev.ID,
			string(ev.Status),
			severity(ev.Severity, opts),
			ev.Provider,
			ev.SecretType,
			ev.MaskedPreview,
			ev.Time().Local().Format(time.DateTime),
			fmt.Sprintf("%dm", ev.CountdownMinutes),
		})
	}
	if err := render(w, []any{"ID", "Status", "Severity", "Provider", "Type", "Preview", "Exposed", "Reminder"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "Exposed: %d (critical: %d, high: %d, medium: %d)\n",
		exposed, counts[types.SevCritical], counts[types.SevHigh], counts[types.SevMedium])
	return nil
}

// NoSecretsFound is printed when a scan or mask finds nothing.
const NoSecretsFound = "No secrets found ✅"

// PrintDetections renders one row per masked span.
func PrintDetections(w io.Writer, dets []types.Detection, opts PrintOptions) error {
	if len(dets) == 0 {
		fmt.Fprintln(w, NoSecretsFound)
		return nil
	}
	rows := make([][]string, 0, len(dets))
	for _, d := range dets {
		rows = append(rows, []string{d.PatternID, d.Provider, severity(d.Severity, opts), fmt.Sprintf("%d-%d", d.Start, d.End), d.Masked})
	}
	return render(w, []any{"Pattern", "Provider", "Severity", "Span", "Masked"}, rows)
}

// PrintDetectors lists patterns with their enabled state under set.
func PrintDetectors(w io.Writer, patterns []detectors.SecretPattern, set detectors.Set, opts PrintOptions) error {
	rows := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		enabled := "no"
		if set.Enabled(p) {
			enabled = "yes"
		}
		rows = append(rows, []string{p.ID, p.Provider, string(p.Category), severity(p.Severity, opts), enabled})
	}
	return render(w, []any{"ID", "Provider", "Category", "Severity", "Enabled"}, rows)
}

// PrintAudit renders the activity trail, newest first as given.
func PrintAudit(w io.Writer, records []audit.Record, _ PrintOptions) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No activity recorded")
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		detail := strings.Join(r.Patterns, ",")
		if len(r.ExposureIDs) > 0 {
			if detail != "" {
				detail += " "
			}
			detail += "→ " + strings.Join(r.ExposureIDs, ",")
		}
		secrets := ""
		if r.Secrets > 0 {
			secrets = fmt.Sprint(r.Secrets)
		}
		rows = append(rows, []string{r.Timestamp.Local().Format(time.DateTime), string(r.Action), r.Source, secrets, detail})
	}
	return render(w, []any{"Time", "Action", "Source", "Secrets", "Detail"}, rows)
}

func severity(s types.Severity, opts PrintOptions) string {
	if opts.NoColor {
		return string(s)
	}
	return colorSeverity(s)
}

var severityColors = map[types.Severity]*color.Color{
	types.SevCritical: color.New(color.FgRed, color.Bold),
	types.SevHigh:     color.New(color.FgRed),
	types.SevMedium:   color.New(color.FgYellow),
}

// colorSeverity colours unconditionally; callers decide via NoColor.
func colorSeverity(s types.Severity) string {
	c, ok := severityColors[s]
	if !ok {
		return string(s)
	}
	c.EnableColor()
	return c.Sprint(string(s))
}
