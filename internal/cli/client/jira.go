package client

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// Issue is the simplified Jira issue returned by the API.
type Issue struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Assignee    string `json:"assignee"`
}

// AnalyzeResponse carries suggestions generated for an issue.
type AnalyzeResponse struct {
	OK          bool   `json:"ok"`
	JiraID      string `json:"jiraId"`
	Suggestions string `json:"suggestions"`
}

// JiraCmd creates the jira parent command
func JiraCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jira",
		Short: "Look up and analyze Jira issues",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <issue-key>",
		Short: "Show a Jira issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var issue Issue
			if err := c.Get(cmd.Context(), "/jira/issues/"+url.PathEscape(args[0]), &issue); err != nil {
				return err
			}

			if wantsJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), issue)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", issue.ID, issue.Summary)
			fmt.Fprintf(out, "Status: %s\n", issue.Status)
			if issue.Assignee != "" {
				fmt.Fprintf(out, "Assignee: %s\n", issue.Assignee)
			}
			if issue.Description != "" {
				fmt.Fprintf(out, "\n%s\n", issue.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "analyze <issue-key>",
		Short: "Suggest next steps for a Jira issue using stored knowledge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp AnalyzeResponse
			if err := c.Post(cmd.Context(), "/jira/analyze", map[string]string{"jiraId": args[0]}, &resp); err != nil {
				return err
			}

			if wantsJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Suggestions)
			return nil
		},
	})

	return cmd
}
