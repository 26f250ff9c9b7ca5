package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Manage pending change requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		path := "/requests"
		if requestEntityType != "" {
			path += "?entityType=" + requestEntityType
		}

		var result struct {
			Requests []struct {
				ID          string `json:"ID"`
				EntityType  string `json:"EntityType"`
				EntityKey   string `json:"EntityKey"`
				Action      string `json:"Action"`
				RequestedBy string `json:"RequestedBy"`
				Notes       string `json:"Notes"`
				CreatedAt   string `json:"CreatedAt"`
			} `json:"requests"`
			TotalSize int `json:"totalSize"`
		}
		if err := client.getJSON(path, &result); err != nil {
			return fmt.Errorf("failed to list requests: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"ID", "Entity", "Key", "Action", "Requester", "Reason", "Created"}
		rows := make([][]string, 0, len(result.Requests))
		for _, r := range result.Requests {
			rows = append(rows, []string{
				truncate(r.ID, 12),
				r.EntityType,
				r.EntityKey,
				r.Action,
				r.RequestedBy,
				truncate(r.Notes, 32),
				r.CreatedAt,
			})
		}
		printTable(headers, rows)
		fmt.Printf("\n%d pending request(s)\n", result.TotalSize)
		return nil
	},
}

var requestsRemoveComponentCmd = &cobra.Command{
	Use:   "remove-component <name>",
	Short: "Request removal of a component and all its assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		body := map[string]string{"componentName": args[0], "reason": requestReason}
		var result struct {
			RequestID string `json:"requestId"`
		}
		if err := client.postJSON("/requests/remove-component", body, &result); err != nil {
			return fmt.Errorf("failed to submit request: %w", err)
		}
		fmt.Printf("Removal request submitted for %q (request %s)\n", args[0], result.RequestID)
		return nil
	},
}

var requestsRemoveLinkCmd = &cobra.Command{
	Use:   "remove-link <class> <component>",
	Short: "Request removal of a class-component link",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		body := map[string]string{
			"className":     args[0],
			"componentName": args[1],
			"reason":        requestReason,
		}
		var result struct {
			RequestID string `json:"requestId"`
		}
		if err := client.postJSON("/requests/remove-class-component", body, &result); err != nil {
			return fmt.Errorf("failed to submit request: %w", err)
		}
		fmt.Printf("Removal request submitted: %s / %s (request %s)\n", args[0], args[1], result.RequestID)
		return nil
	},
}

var requestsRemoveAssignmentCmd = &cobra.Command{
	Use:   "remove-assignment <component> <technology>",
	Short: "Request removal of a component-technology assignment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		body := map[string]string{
			"componentName":  args[0],
			"technologyCode": args[1],
			"reason":         requestReason,
		}
		var result struct {
			RequestID string `json:"requestId"`
		}
		if err := client.postJSON("/requests/remove-component-technology", body, &result); err != nil {
			return fmt.Errorf("failed to submit request: %w", err)
		}
		fmt.Printf("Removal request submitted: %s / %s (request %s)\n", args[0], args[1], result.RequestID)
		return nil
	},
}

var requestsReRateCmd = &cobra.Command{
	Use:   "re-rate <component> <technology> <Primary|Secondary>",
	Short: "Request a rating change for an existing assignment",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		body := map[string]string{
			"componentName":   args[0],
			"technologyCode":  args[1],
			"applicationType": args[2],
			"reason":          requestReason,
		}
		var result struct {
			RequestID string `json:"requestId"`
		}
		if err := client.postJSON("/requests/update-application-type", body, &result); err != nil {
			return fmt.Errorf("failed to submit request: %w", err)
		}
		fmt.Printf("Rating change requested: %s / %s -> %s (request %s)\n",
			args[0], args[1], args[2], result.RequestID)
		return nil
	},
}

var requestsApproveCmd = &cobra.Command{
	Use:   "approve <request-id>...",
	Short: "Approve one or more pending requests",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		if len(args) == 1 {
			var entry struct {
				ID     string `json:"ID"`
				Status string `json:"Status"`
			}
			if err := client.postJSON("/requests/"+args[0]+"/approve", map[string]string{}, &entry); err != nil {
				return fmt.Errorf("failed to approve request: %w", err)
			}
			fmt.Printf("Request %s %s\n", entry.ID, entry.Status)
			return nil
		}

		var result struct {
			Outcomes []struct {
				ID     string `json:"id"`
				Result string `json:"result"`
				Error  string `json:"error"`
			} `json:"outcomes"`
		}
		if err := client.postJSON("/requests/approve-all", map[string]any{"ids": args}, &result); err != nil {
			return fmt.Errorf("failed to approve requests: %w", err)
		}
		for _, o := range result.Outcomes {
			if o.Error != "" {
				fmt.Printf("%s: %s (%s)\n", truncate(o.ID, 12), o.Result, o.Error)
			} else {
				fmt.Printf("%s: %s\n", truncate(o.ID, 12), o.Result)
			}
		}
		return nil
	},
}

var requestsRejectCmd = &cobra.Command{
	Use:   "reject <request-id>...",
	Short: "Reject one or more pending requests",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		if len(args) == 1 {
			var entry struct {
				ID     string `json:"ID"`
				Status string `json:"Status"`
			}
			body := map[string]string{"note": requestNote}
			if err := client.postJSON("/requests/"+args[0]+"/reject", body, &entry); err != nil {
				return fmt.Errorf("failed to reject request: %w", err)
			}
			fmt.Printf("Request %s %s\n", entry.ID, entry.Status)
			return nil
		}

		var result struct {
			Outcomes []struct {
				ID     string `json:"id"`
				Result string `json:"result"`
				Error  string `json:"error"`
			} `json:"outcomes"`
		}
		body := map[string]any{"ids": args, "note": requestNote}
		if err := client.postJSON("/requests/reject-all", body, &result); err != nil {
			return fmt.Errorf("failed to reject requests: %w", err)
		}
		for _, o := range result.Outcomes {
			if o.Error != "" {
				fmt.Printf("%s: %s (%s)\n", truncate(o.ID, 12), o.Result, o.Error)
			} else {
				fmt.Printf("%s: %s\n", truncate(o.ID, 12), o.Result)
			}
		}
		return nil
	},
}

var (
	requestReason     string
	requestNote       string
	requestEntityType string
)

func init() {
	requestsListCmd.Flags().StringVar(&requestEntityType, "entity-type", "", "Filter by entity type")
	for _, c := range []*cobra.Command{
		requestsRemoveComponentCmd,
		requestsRemoveLinkCmd,
		requestsRemoveAssignmentCmd,
		requestsReRateCmd,
	} {
		c.Flags().StringVar(&requestReason, "reason", "", "Reason shown to the reviewer")
	}
	requestsRejectCmd.Flags().StringVar(&requestNote, "note", "", "Review note recorded on the entry")

	requestsCmd.AddCommand(requestsListCmd)
	requestsCmd.AddCommand(requestsRemoveComponentCmd)
	requestsCmd.AddCommand(requestsRemoveLinkCmd)
	requestsCmd.AddCommand(requestsRemoveAssignmentCmd)
	requestsCmd.AddCommand(requestsReRateCmd)
	requestsCmd.AddCommand(requestsApproveCmd)
	requestsCmd.AddCommand(requestsRejectCmd)
}
