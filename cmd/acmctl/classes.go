package main

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "Manage asset classes",
}

var classesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List asset classes",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Classes []struct {
				Name string `json:"Name"`
			} `json:"classes"`
		}
		if err := client.getJSON("/classes", &result); err != nil {
			return fmt.Errorf("failed to list classes: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		rows := make([][]string, 0, len(result.Classes))
		for _, c := range result.Classes {
			rows = append(rows, []string{c.Name})
		}
		printTable([]string{"Name"}, rows)
		return nil
	},
}

var classesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an asset class (applies immediately)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var entry struct {
			ID string `json:"ID"`
		}
		if err := client.postJSON("/classes", map[string]string{"name": args[0]}, &entry); err != nil {
			return fmt.Errorf("failed to add class: %w", err)
		}
		fmt.Printf("Added class %q (log entry %s)\n", args[0], entry.ID)
		return nil
	},
}

var classesAssignCmd = &cobra.Command{
	Use:   "assign <class> <component>",
	Short: "Link a component into a class (applies immediately)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var entry struct {
			ID string `json:"ID"`
		}
		path := fmt.Sprintf("/classes/%s/components", url.PathEscape(args[0]))
		if err := client.postJSON(path, map[string]string{"componentName": args[1]}, &entry); err != nil {
			return fmt.Errorf("failed to assign component: %w", err)
		}
		fmt.Printf("Linked %q into class %q (log entry %s)\n", args[1], args[0], entry.ID)
		return nil
	},
}

var classesResolveCmd = &cobra.Command{
	Use:   "resolve <class>",
	Short: "Resolve the technologies a class requires",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Class        string `json:"class"`
			Technologies map[string]struct {
				ApplicationType string   `json:"applicationType"`
				Components      []string `json:"components"`
			} `json:"technologies"`
		}
		if err := client.getJSON(fmt.Sprintf("/classes/%s/technologies", url.PathEscape(args[0])), &result); err != nil {
			return fmt.Errorf("failed to resolve class: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		codes := make([]string, 0, len(result.Technologies))
		for code := range result.Technologies {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		headers := []string{"Technology", "Application", "Driven by"}
		rows := make([][]string, 0, len(codes))
		for _, code := range codes {
			req := result.Technologies[code]
			rows = append(rows, []string{code, req.ApplicationType, strings.Join(req.Components, ", ")})
		}
		printTable(headers, rows)
		return nil
	},
}

func init() {
	classesCmd.AddCommand(classesListCmd)
	classesCmd.AddCommand(classesAddCmd)
	classesCmd.AddCommand(classesAssignCmd)
	classesCmd.AddCommand(classesResolveCmd)
}
