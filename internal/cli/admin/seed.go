package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/timberyard/meetingassist/internal/service"
)

func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load meeting types and personas",
		Long:  "Upsert the meeting types and personas listed in a YAML catalog file. Use - to read stdin.",
		RunE:  runSeed,
	}

	cmd.Flags().StringP("file", "f", "", "Catalog YAML file")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path, _ := cmd.Flags().GetString("file")
	outputFormat, _ := cmd.Flags().GetString("output")

	catalog, err := readCatalog(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := loadApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := service.NewCatalogService(a.meetingTypes, a.personas).WithTx(a.txRunner).Seed(ctx, catalog)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]int{"meetingTypes": res.MeetingTypes, "personas": res.Personas}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d meeting types and %d personas\n", res.MeetingTypes, res.Personas)
	}
	return nil
}

func readCatalog(path string, stdin io.Reader) (*service.Catalog, error) {
	if path == "-" {
		return service.ParseCatalog(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return service.ParseCatalog(f)
}
