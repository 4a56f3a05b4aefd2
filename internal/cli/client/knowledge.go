package client

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

type ingestRequest struct {
	ItemID    string `json:"itemId"`
	FileName  string `json:"fileName,omitempty"`
	Content   string `json:"content,omitempty"`
	ObjectKey string `json:"objectKey,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Title     string `json:"title,omitempty"`
}

// IngestResponse reports how an item was indexed.
type IngestResponse struct {
	OK     bool   `json:"ok"`
	ItemID string `json:"itemId"`
	Chunks int    `json:"chunks"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var (
		itemID    string
		kind      string
		title     string
		objectKey string
	)

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Extract and index a document",
		Long: `Uploads a txt, md, pdf, docx, xlsx or pptx file for text extraction and indexing.
With --object-key the server reads the file from its bucket instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ingestRequest{ItemID: itemID, Kind: kind, Title: title, ObjectKey: objectKey}

			switch {
			case len(args) == 1:
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				req.FileName = filepath.Base(args[0])
				req.Content = base64.StdEncoding.EncodeToString(data)
				if req.ItemID == "" {
					req.ItemID = strings.TrimSuffix(req.FileName, filepath.Ext(req.FileName))
				}
			case objectKey != "":
				if req.ItemID == "" {
					req.ItemID = strings.TrimSuffix(filepath.Base(objectKey), filepath.Ext(objectKey))
				}
			default:
				return fmt.Errorf("a file or --object-key is required")
			}

			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp IngestResponse
			if err := c.Post(cmd.Context(), "/knowledge/ingest", req, &resp); err != nil {
				return err
			}

			if wantsJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s (%d chunks)\n", resp.ItemID, resp.Chunks)
			return nil
		},
	}

	cmd.Flags().StringVar(&itemID, "id", "", "Knowledge item id (defaults to the file name)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "document", "Knowledge kind (document or transcript)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Title shown in retrieved context")
	cmd.Flags().StringVar(&objectKey, "object-key", "", "Ingest an object already stored in the bucket")

	return cmd
}

type queryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// QueryHit is one ranked knowledge item.
type QueryHit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// QueryCmd creates the query command.
func QueryCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Find the knowledge most similar to a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var hits []QueryHit
			if err := c.Post(cmd.Context(), "/knowledge/query", queryRequest{Query: args[0], K: k}, &hits); err != nil {
				return err
			}

			if wantsJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), hits)
			}
			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintln(out, "No matching knowledge")
				return nil
			}
			for i, h := range hits {
				fmt.Fprintf(out, "%d. %s (score: %.3f)\n", i+1, h.ID, h.Score)
				fmt.Fprintf(out, "   %s\n", preview(h.Text, 160))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&k, "top", "k", 5, "Number of results")

	return cmd
}

type createDocumentRequest struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// NoteCmd creates the note command, which stores a plain-text document.
func NoteCmd() *cobra.Command {
	var id, title string

	cmd := &cobra.Command{
		Use:   "note <text>",
		Short: "Store a plain-text knowledge document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp struct {
				OK bool   `json:"ok"`
				ID string `json:"id"`
			}
			if err := c.Post(cmd.Context(), "/knowledge", createDocumentRequest{ID: id, Title: title, Text: args[0]}, &resp); err != nil {
				return err
			}

			if wantsJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", resp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Document id (generated when empty)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Document title")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
