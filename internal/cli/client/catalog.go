package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// OptionsResponse lists what a meeting can be built from.
type OptionsResponse struct {
	MeetingTypes []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"meetingTypes"`
	Personas []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"personas"`
}

// OptionsCmd creates the options command.
func OptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List meeting types and personas",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var opts OptionsResponse
			if err := c.Get(cmd.Context(), "/options", &opts); err != nil {
				return err
			}

			if wantsJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), opts)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Meeting types:")
			for _, mt := range opts.MeetingTypes {
				fmt.Fprintf(out, "  %s: %s\n", mt.ID, mt.Name)
			}
			fmt.Fprintln(out, "Personas:")
			for _, p := range opts.Personas {
				fmt.Fprintf(out, "  %s: %s (%s)\n", p.ID, p.Name, p.Role)
			}
			return nil
		},
	}
}
