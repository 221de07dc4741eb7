package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/boardgametracker/internal/forms"
	"github.com/mcoot/boardgametracker/internal/model"
)

func newLocationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Location commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List locations with their play counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context) error {
				locations, err := client.Locations.List(ctx)
				if err != nil {
					return err
				}
				out.Print(locations)
				return nil
			})
		},
	})
	cmd.AddCommand(newLocationCreateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "location")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				if err := client.Locations.Delete(ctx, model.LocationID(id)); err != nil {
					return err
				}
				out.PrintMessage(fmt.Sprintf("Location %d deleted", id))
				return nil
			})
		},
	})

	return cmd
}

func newLocationCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			location, errs := forms.LocationForm{Name: name}.Validate()
			if err := errs.Err(); err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				created, err := client.Locations.Create(ctx, location)
				if err != nil {
					return err
				}
				out.Print(created)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Location name (required)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
