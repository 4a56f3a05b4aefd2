package client

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

type attachedFile struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Encoding string `json:"encoding,omitempty"`
}

type runMeetingRequest struct {
	Name          string         `json:"name"`
	MeetingTypeID string         `json:"meetingTypeId"`
	Instructions  string         `json:"instructions,omitempty"`
	Goal          string         `json:"goal,omitempty"`
	AttendeeIDs   []string       `json:"attendeeIds"`
	AttachedFiles []attachedFile `json:"attachedFiles,omitempty"`
}

// RunMeetingResponse is the result of a facilitated meeting.
type RunMeetingResponse struct {
	OK            bool   `json:"ok"`
	Transcript    string `json:"transcript"`
	StorageID     string `json:"storageId"`
	KnowledgeUsed []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"knowledgeUsed,omitempty"`
}

// RunCmd creates the run command.
func RunCmd() *cobra.Command {
	var (
		name         string
		goal         string
		instructions string
		attendees    []string
		files        []string
	)

	cmd := &cobra.Command{
		Use:   "run <meeting-type-id>",
		Short: "Run an AI-facilitated meeting",
		Long:  "Runs a meeting of the given type with the selected personas and prints the generated transcript.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attached, err := readAttachments(files)
			if err != nil {
				return err
			}
			if name == "" {
				name = args[0]
			}

			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp RunMeetingResponse
			err = c.Post(cmd.Context(), "/meetings/run", runMeetingRequest{
				Name:          name,
				MeetingTypeID: args[0],
				Instructions:  instructions,
				Goal:          goal,
				AttendeeIDs:   attendees,
				AttachedFiles: attached,
			}, &resp)
			if err != nil {
				var failed *MeetingFailedError
				if errors.As(err, &failed) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Partial transcript:")
					fmt.Fprintln(cmd.ErrOrStderr(), failed.Transcript)
				}
				return err
			}

			if wantsJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Transcript)
			fmt.Fprintf(out, "\nSaved as %s", resp.StorageID)
			if len(resp.KnowledgeUsed) > 0 {
				fmt.Fprintf(out, " (%d knowledge items used)", len(resp.KnowledgeUsed))
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Meeting name (defaults to the meeting type id)")
	cmd.Flags().StringVarP(&goal, "goal", "g", "", "Goal of the meeting")
	cmd.Flags().StringVarP(&instructions, "instructions", "i", "", "Extra instructions for the facilitator")
	cmd.Flags().StringSliceVarP(&attendees, "attendee", "a", nil, "Persona id to attend (repeatable)")
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "File to attach (repeatable)")

	return cmd
}

func readAttachments(paths []string) ([]attachedFile, error) {
	files := make([]attachedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment: %w", err)
		}
		files = append(files, attachedFile{
			Name:     filepath.Base(p),
			Content:  base64.StdEncoding.EncodeToString(data),
			Encoding: "base64",
		})
	}
	return files, nil
}
