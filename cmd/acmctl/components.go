package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Manage components",
}

var componentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List components",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Components []struct {
				Name      string `json:"Name"`
				CreatedAt string `json:"CreatedAt"`
			} `json:"components"`
		}
		if err := client.getJSON("/components", &result); err != nil {
			return fmt.Errorf("failed to list components: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"Name", "Created"}
		rows := make([][]string, 0, len(result.Components))
		for _, c := range result.Components {
			rows = append(rows, []string{c.Name, c.CreatedAt})
		}
		printTable(headers, rows)
		return nil
	},
}

var componentsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a component (applies immediately)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var entry struct {
			ID     string `json:"ID"`
			Status string `json:"Status"`
		}
		if err := client.postJSON("/components", map[string]string{"name": args[0]}, &entry); err != nil {
			return fmt.Errorf("failed to add component: %w", err)
		}
		fmt.Printf("Added component %q (log entry %s)\n", args[0], entry.ID)
		return nil
	},
}

var componentsAssignTechCmd = &cobra.Command{
	Use:   "assign-tech <component> <technology> <Primary|Secondary>",
	Short: "Assign a technology to a component (applies immediately)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		body := map[string]string{
			"technologyCode":  args[1],
			"applicationType": args[2],
		}
		var entry struct {
			ID     string `json:"ID"`
			Status string `json:"status"`
		}
		path := fmt.Sprintf("/components/%s/technologies", url.PathEscape(args[0]))
		if err := client.postJSON(path, body, &entry); err != nil {
			return fmt.Errorf("failed to assign technology: %w", err)
		}
		if entry.ID == "" {
			fmt.Printf("No change: %q already rated %s for %s\n", args[0], args[2], args[1])
			return nil
		}
		fmt.Printf("Assigned %s (%s) to %q (log entry %s)\n", args[1], args[2], args[0], entry.ID)
		return nil
	},
}

var componentsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a component's technologies and classes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var techs struct {
			Assignments []struct {
				TechnologyCode  string `json:"TechnologyCode"`
				ApplicationType string `json:"ApplicationType"`
			} `json:"assignments"`
		}
		if err := client.getJSON(fmt.Sprintf("/components/%s/technologies", url.PathEscape(args[0])), &techs); err != nil {
			return fmt.Errorf("failed to get component technologies: %w", err)
		}

		var classes struct {
			Classes []string `json:"classes"`
		}
		if err := client.getJSON(fmt.Sprintf("/components/%s/classes", url.PathEscape(args[0])), &classes); err != nil {
			return fmt.Errorf("failed to get component classes: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(map[string]any{
				"component":   args[0],
				"assignments": techs.Assignments,
				"classes":     classes.Classes,
			})
		}

		headers := []string{"Technology", "Application"}
		rows := make([][]string, 0, len(techs.Assignments))
		for _, a := range techs.Assignments {
			rows = append(rows, []string{a.TechnologyCode, a.ApplicationType})
		}
		printTable(headers, rows)
		fmt.Printf("\nUsed by %d class(es)\n", len(classes.Classes))
		for _, c := range classes.Classes {
			fmt.Printf("  %s\n", c)
		}
		return nil
	},
}

func init() {
	componentsCmd.AddCommand(componentsListCmd)
	componentsCmd.AddCommand(componentsAddCmd)
	componentsCmd.AddCommand(componentsAssignTechCmd)
	componentsCmd.AddCommand(componentsShowCmd)
}
