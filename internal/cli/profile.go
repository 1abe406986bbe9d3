package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile commands (require a verified bearer token)",
	}

	cmd.AddCommand(newProfileGetCmd())
	cmd.AddCommand(newProfileSetCmd())

	return cmd
}

func newProfileGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show your stored profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile

			if err := client.Get("/profile", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newProfileSetCmd() *cobra.Command {
	var name, country string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" && country == "" {
				return fmt.Errorf("at least one of --name or --country is required")
			}

			req := map[string]string{}
			if name != "" {
				req["display_name"] = name
			}
			if country != "" {
				req["country"] = country
			}

			var result Profile

			if err := client.Post("/profile", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&country, "country", "", "Two-letter country code")

	return cmd
}
