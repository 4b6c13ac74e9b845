package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/idelchi/dupstat/internal/dupes"
)

// PrintJSON outputs the report in JSON format.
func PrintJSON(report *dupes.Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintText outputs each duplicate group as a block of paths framed by blank
// lines, then the total number of hashed files.
func PrintText(report *dupes.Report, writer io.Writer) error {
	for _, group := range report.Groups {
		if _, err := fmt.Fprintln(writer); err != nil {
			return err
		}

		for _, path := range group.Paths {
			if _, err := fmt.Fprintln(writer, path); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(writer); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(writer, "Total files: %d\n", report.FileCount)

	return err
}

// PrintErrorSummary writes the number of entries that could not be scanned and,
// when listAll is set, a table of them.
func PrintErrorSummary(report *dupes.Report, writer io.Writer, listAll bool) error {
	warn := color.New(color.FgYellow, color.Bold)

	if _, err := warn.Fprintf(writer, "\n%s could not be scanned",
		pluralEntries(len(report.Errors))); err != nil {
		return err
	}

	if !listAll {
		_, err := fmt.Fprintln(writer, " (use --show-errors to list them)")

		return err
	}

	if _, err := fmt.Fprintln(writer, ":"); err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Kind", "Path", "Error"})

	for _, scanErr := range report.Errors {
		tw.AppendRow(table.Row{scanErr.Kind, scanErr.Path, scanErr.Message()})
	}

	_, err := fmt.Fprintln(writer, tw.Render())

	return err
}

func pluralEntries(n int) string {
	if n == 1 {
		return "1 entry"
	}

	return humanize.Comma(int64(n)) + " entries"
}
