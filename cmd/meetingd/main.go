package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timberyard/meetingassist/internal/cli"
	"github.com/timberyard/meetingassist/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "meetingd",
		Short: "Meeting assistant daemon",
		Long:  "Runs the meeting assistant API server and its maintenance tasks: migrations, catalog seeding, embedding backfill and training export",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())
	rootCmd.AddCommand(admin.SeedCmd())
	rootCmd.AddCommand(admin.BackfillCmd())
	rootCmd.AddCommand(admin.ExportCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
