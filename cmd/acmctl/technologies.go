package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var technologiesCmd = &cobra.Command{
	Use:   "technologies",
	Short: "Manage technology codes",
}

var technologiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List technology codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Technologies []struct {
				Code        string `json:"Code"`
				Description string `json:"Description"`
			} `json:"technologies"`
		}
		if err := client.getJSON("/technologies", &result); err != nil {
			return fmt.Errorf("failed to list technologies: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"Code", "Description"}
		rows := make([][]string, 0, len(result.Technologies))
		for _, t := range result.Technologies {
			rows = append(rows, []string{t.Code, t.Description})
		}
		printTable(headers, rows)
		return nil
	},
}

var technologiesAddCmd = &cobra.Command{
	Use:   "add <code> [description]",
	Short: "Add a technology code (applies immediately)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		body := map[string]string{"code": args[0]}
		if len(args) > 1 {
			body["description"] = args[1]
		}
		var entry struct {
			ID string `json:"ID"`
		}
		if err := client.postJSON("/technologies", body, &entry); err != nil {
			return fmt.Errorf("failed to add technology: %w", err)
		}
		fmt.Printf("Added technology %q (log entry %s)\n", args[0], entry.ID)
		return nil
	},
}

var technologiesComponentsCmd = &cobra.Command{
	Use:   "components <code>",
	Short: "List components driving a technology",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		path := fmt.Sprintf("/technologies/%s/components", url.PathEscape(args[0]))
		if onlyApplication != "" {
			path += "?applicationType=" + onlyApplication
		}

		var result struct {
			Assignments []struct {
				ComponentName   string `json:"ComponentName"`
				ApplicationType string `json:"ApplicationType"`
			} `json:"assignments"`
		}
		if err := client.getJSON(path, &result); err != nil {
			return fmt.Errorf("failed to list technology components: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"Component", "Application"}
		rows := make([][]string, 0, len(result.Assignments))
		for _, a := range result.Assignments {
			rows = append(rows, []string{a.ComponentName, a.ApplicationType})
		}
		printTable(headers, rows)
		return nil
	},
}

var onlyApplication string

func init() {
	technologiesComponentsCmd.Flags().StringVar(&onlyApplication, "application", "", "Filter to Primary or Secondary assignments")

	technologiesCmd.AddCommand(technologiesListCmd)
	technologiesCmd.AddCommand(technologiesAddCmd)
	technologiesCmd.AddCommand(technologiesComponentsCmd)
}
