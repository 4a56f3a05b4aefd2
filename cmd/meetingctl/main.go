package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timberyard/meetingassist/internal/cli"
	"github.com/timberyard/meetingassist/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "meetingctl",
		Short: "meetingctl - command line client for the meeting assistant",
		Long: `meetingctl runs AI-facilitated meetings, manages the knowledge base and
builds proposals against a meetingd server.

Environment variables:
  MEETING_API_TOKEN   Bearer token, when the server requires one
  MEETING_API_URL     API base URL (default: http://localhost:8080)`,
		Version:      version,
		SilenceUsage: true,
	}

	client.AddPersistentFlags(rootCmd)
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AuthCmd())
	rootCmd.AddCommand(client.OptionsCmd())
	rootCmd.AddCommand(client.RunCmd())
	rootCmd.AddCommand(client.TranscriptsCmd())
	rootCmd.AddCommand(client.ProposalCmd())
	rootCmd.AddCommand(client.IngestCmd())
	rootCmd.AddCommand(client.NoteCmd())
	rootCmd.AddCommand(client.QueryCmd())
	rootCmd.AddCommand(client.JiraCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
