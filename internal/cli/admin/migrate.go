package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timberyard/meetingassist/internal/config"
	"github.com/timberyard/meetingassist/internal/database"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply every pending schema migration and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return database.Migrate(cfg.DatabaseURL, newLogger(cfg))
		},
	}
}
