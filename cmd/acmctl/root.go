package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	outputFmt string
	actor     string
)

var rootCmd = &cobra.Command{
	Use:   "acmctl",
	Short: "CLI for the ACM standard registry",
	Long: `acmctl manages the Asset Condition Monitoring standard: the components,
technologies, and asset classes that define which monitoring each class
requires, and the review queue that gates removals and re-ratings.

Additive edits apply immediately. Removals and rating changes are queued
as pending requests and must be approved with "acmctl requests approve".`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Registry server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&actor, "as", "", "Actor identity sent with mutations (default: ACM_USER env or \"system\")")

	rootCmd.AddCommand(componentsCmd)
	rootCmd.AddCommand(technologiesCmd)
	rootCmd.AddCommand(classesCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summaryCmd)
}

// resolvedActor returns the effective actor identity.
// Priority: --as flag > ACM_USER env var > "system".
func resolvedActor() string {
	if actor != "" {
		return actor
	}
	if user := os.Getenv("ACM_USER"); user != "" {
		return user
	}
	return "system"
}
