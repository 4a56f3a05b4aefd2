package client

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// TranscriptSummary is one row of the transcript listing.
type TranscriptSummary struct {
	ID              string    `json:"id"`
	MeetingID       string    `json:"meetingId"`
	MeetingTypeID   string    `json:"meetingTypeId"`
	MeetingTypeName string    `json:"meetingTypeName,omitempty"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TranscriptPage is a page of transcript summaries.
type TranscriptPage struct {
	Items   []TranscriptSummary `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"hasMore"`
}

// Transcript is a stored meeting record.
type Transcript struct {
	ID            string   `json:"id"`
	MeetingID     string   `json:"meetingId"`
	MeetingTypeID string   `json:"meetingTypeId"`
	Text          string   `json:"transcript"`
	AttendeeIDs   []string `json:"attendeeIds"`
	Goal          string   `json:"goal,omitempty"`
	Source        string   `json:"source"`
	CreatedAt     string   `json:"createdAt"`
}

// TranscriptsCmd creates the transcripts parent command
func TranscriptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transcripts",
		Aliases: []string{"tx"},
		Short:   "Browse stored meeting transcripts",
	}

	var (
		limit  int
		cursor string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List transcripts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			if cursor != "" {
				q.Set("cursor", cursor)
			}

			var page TranscriptPage
			if err := c.Get(cmd.Context(), "/transcripts?"+q.Encode(), &page); err != nil {
				return err
			}

			if wantsJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), page)
			}
			out := cmd.OutOrStdout()
			if len(page.Items) == 0 {
				fmt.Fprintln(out, "No transcripts found")
				return nil
			}
			for _, t := range page.Items {
				label := t.MeetingTypeName
				if label == "" {
					label = t.MeetingTypeID
				}
				fmt.Fprintf(out, "  %s  %s  %-10s %s\n", t.ID, t.CreatedAt.Format("2006-01-02 15:04"), t.Source, label)
			}
			if page.HasMore && page.Cursor != "" {
				fmt.Fprintf(out, "\nMore results available. Use --cursor %s\n", page.Cursor)
			}
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	list.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var t Transcript
			if err := c.Get(cmd.Context(), "/transcripts/"+url.PathEscape(args[0]), &t); err != nil {
				return err
			}

			if wantsJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), t)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Text)
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

type proposalRequest struct {
	MeetingIDs []string `json:"meetingIds"`
	Format     string   `json:"format,omitempty"`
}

// ProposalCmd creates the proposal command.
func ProposalCmd() *cobra.Command {
	var (
		outPath string
		outline bool
	)

	cmd := &cobra.Command{
		Use:   "proposal <transcript-id>...",
		Short: "Build a discovery proposal deck from transcripts",
		Long:  "Generates a PPTX discovery proposal from one or more stored transcripts. With --outline the slide outline is printed instead.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			if outline {
				var resp struct {
					Slides []struct {
						Title   string   `json:"title"`
						Bullets []string `json:"bullets"`
					} `json:"slides"`
				}
				if err := c.Post(cmd.Context(), "/proposals", proposalRequest{MeetingIDs: args, Format: "json"}, &resp); err != nil {
					return err
				}
				if wantsJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), resp)
				}
				out := cmd.OutOrStdout()
				for i, s := range resp.Slides {
					fmt.Fprintf(out, "%d. %s\n", i+1, s.Title)
					for _, b := range s.Bullets {
						fmt.Fprintf(out, "   - %s\n", b)
					}
				}
				return nil
			}

			n, err := c.PostDownload(cmd.Context(), "/proposals", proposalRequest{MeetingIDs: args, Format: "pptx"}, outPath, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", outPath, n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "O", "discovery-proposal.pptx", "Output file")
	cmd.Flags().BoolVar(&outline, "outline", false, "Print the slide outline instead of downloading the deck")

	return cmd
}
