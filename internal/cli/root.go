package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "netplay",
		Short: "CLI client for the netplay session server",
		Long: `netplay is a CLI client for the realtime game session server.

It covers the room registry and profile endpoints of the JSON API and can
watch a room's realtime frames over websocket.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Flags are parsed by now, so the client sees the final config
			client = NewClient(cfg.ServerURL, cfg.Token, cfg.AdminToken)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: NETPLAY_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Bearer token (env: NETPLAY_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.AdminToken, "admin-token", cfg.AdminToken, "Admin token for privileged commands (env: NETPLAY_ADMIN_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
