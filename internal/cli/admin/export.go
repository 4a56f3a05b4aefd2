package admin

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/timberyard/meetingassist/internal/service"
)

func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transcripts as a training set",
		Long: `Write every stored transcript as a JSONL training example to a local file.
When object storage is configured the file is also uploaded as training.jsonl,
and --docs uploads a folder of reference documents under TrainingDocs/.`,
		RunE: runExport,
	}

	cmd.Flags().String("out", "training.jsonl", "Local output file")
	cmd.Flags().String("docs", "", "Folder of training documents to upload")
	cmd.Flags().Bool("no-upload", false, "Only write the local file")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out, _ := cmd.Flags().GetString("out")
	docs, _ := cmd.Flags().GetString("docs")
	noUpload, _ := cmd.Flags().GetBool("no-upload")

	a, err := loadApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	data, n, err := a.exportService().Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build training set: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d examples to %s\n", n, out)

	if noUpload {
		return nil
	}
	if a.s3 == nil {
		a.logger.Warn("object storage not configured, skipping upload")
		return nil
	}

	if err := a.s3.PutObject(ctx, service.TrainingObjectKey, data, service.TrainingContentType); err != nil {
		return fmt.Errorf("failed to upload training set: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded s3://%s/%s\n", a.s3.Bucket(), service.TrainingObjectKey)

	if docs != "" {
		count, err := a.s3.UploadDir(ctx, docs, service.TrainingDocsPrefix)
		if err != nil {
			return err
		}
		a.logger.Info("uploaded training documents", slog.Int("files", count), slog.String("dir", docs))
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d documents to s3://%s/%s/\n", count, a.s3.Bucket(), service.TrainingDocsPrefix)
	}
	return nil
}
