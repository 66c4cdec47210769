package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/wptgen/wptgen/internal/report"
)

func newReportCmd() *cobra.Command {
	var inputPath string
	var since string
	var format string
	var outPath string
	var scenario string
	var runID string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize generation logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return errors.New("input path is required")
			}

			reader := report.Reader{Scenario: scenario, RunID: runID}
			if since != "" {
				dur, err := time.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("invalid since duration: %w", err)
				}
				reader.Since = time.Now().Add(-dur)
			}

			records, err := reader.Read(inputPath)
			if err != nil {
				return err
			}
			if len(records) == 0 && (scenario != "" || runID != "") {
				return fmt.Errorf("no generation records match scenario %q run %q", scenario, runID)
			}

			summary := report.Summarize(records)
			switch format {
			case "", "text":
				return report.WriteOutput(cmd.OutOrStdout(), outPath, []byte(report.RenderText(summary)))
			case "md":
				return report.WriteOutput(cmd.OutOrStdout(), outPath, []byte(report.RenderMarkdown(summary)))
			case "json":
				data, err := report.RenderJSON(summary)
				if err != nil {
					return err
				}
				return report.WriteOutput(cmd.OutOrStdout(), outPath, data)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	cmd.Flags().StringVar(&inputPath, "in", "", "Path to generation log JSONL")
	cmd.Flags().StringVar(&since, "since", "", "Only include entries newer than this duration (e.g. 10m)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "Only include test cases generated by this scenario")
	cmd.Flags().StringVar(&runID, "run", "", "Only include a single generation run id")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|md|json")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file path (default stdout)")

	return cmd
}
