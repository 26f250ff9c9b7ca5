package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the integrity scan against the live standard",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Findings []struct {
				Kind   string `json:"kind"`
				Key    string `json:"key"`
				Detail string `json:"detail"`
			} `json:"findings"`
			Clean bool `json:"clean"`
		}
		if err := client.getJSON("/validate", &result); err != nil {
			return fmt.Errorf("failed to validate: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		if result.Clean {
			fmt.Println("No findings. The standard is internally consistent.")
			return nil
		}

		headers := []string{"Kind", "Key", "Detail"}
		rows := make([][]string, 0, len(result.Findings))
		for _, f := range result.Findings {
			rows = append(rows, []string{f.Kind, f.Key, f.Detail})
		}
		printTable(headers, rows)
		fmt.Printf("\n%d finding(s)\n", len(result.Findings))
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show table counts and the pending-request total",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Counts          map[string]int64 `json:"counts"`
			PendingRequests int              `json:"pendingRequests"`
		}
		if err := client.getJSON("/summary", &result); err != nil {
			return fmt.Errorf("failed to fetch summary: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		rows := make([][]string, 0, len(result.Counts))
		for _, table := range []string{
			"technologies", "components", "classes",
			"class_component", "component_technology", "change_log",
		} {
			rows = append(rows, []string{table, fmt.Sprintf("%d", result.Counts[table])})
		}
		printTable([]string{"Table", "Rows"}, rows)
		fmt.Printf("\n%d pending request(s)\n", result.PendingRequests)
		return nil
	},
}
