package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored connection profile",
		Long:  "Store, clear and inspect the API URL and token used by meetingctl",
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authStatusCmd())

	return cmd
}

func authLoginCmd() *cobra.Command {
	var token, apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save the API URL and token",
		Long:  "Store the API URL and bearer token in the global config (~/.config/meetingctl/config.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := SaveGlobalConfig(&GlobalConfig{APIToken: token, APIURL: apiURL}); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile for %s\n", apiURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token configured on the server as MEETING_API_TOKEN")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")

	return cmd
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return fmt.Errorf("failed to logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile removed")
			return nil
		},
	}
}

type authStatus struct {
	Source   CredentialSource `json:"source"`
	APIURL   string           `json:"api_url"`
	APIToken string           `json:"api_token"`
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which API URL and token will be used",
		RunE: func(cmd *cobra.Command, args []string) error {
			flagURL, _ := cmd.Flags().GetString("api-url")
			source, apiURL := ResolveAPIURL(flagURL)

			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			status := authStatus{Source: source, APIURL: apiURL, APIToken: MaskToken(c.token)}

			if wantsJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API URL: %s (from %s)\n", status.APIURL, status.Source)
			fmt.Fprintf(out, "Token:   %s\n", status.APIToken)
			return nil
		},
	}
}
