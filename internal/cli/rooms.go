package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Room registry commands",
	}

	cmd.AddCommand(newRoomsListCmd())
	cmd.AddCommand(newRoomsGetCmd())
	cmd.AddCommand(newRoomsCreateCmd())
	cmd.AddCommand(newRoomsDeleteCmd())
	cmd.AddCommand(newRoomsResetCmd())

	return cmd
}

func newRoomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Room

			if err := client.Get("/rooms", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <room-id>",
		Short: "Show one room's occupancy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room

			if err := client.Get(fmt.Sprintf("/rooms/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomsCreateCmd() *cobra.Command {
	var id, label string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if id != "" {
				req["room_id"] = id
			}
			if label != "" {
				req["label"] = label
			}

			var result Room

			if err := client.Post("/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Room id (default: generated)")
	cmd.Flags().StringVar(&label, "label", "", "Display label (default: the id)")

	return cmd
}

func newRoomsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <room-id>",
		Short: "Delete an empty room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(fmt.Sprintf("/rooms/%s", args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Deleted room %s", args[0]))
			return nil
		},
	}
}

func newRoomsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <room-id>",
		Short: "Reset a room's game (requires the admin token)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room

			if err := client.Post(fmt.Sprintf("/rooms/%s/reset", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
