package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/boardgametracker/internal/model"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Display settings and backend information",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show the display settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context) error {
				settings, err := client.Settings.Get(ctx)
				if err != nil {
					return err
				}
				out.Print(settings)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "languages",
		Short: "List the supported languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context) error {
				languages, err := client.Settings.Languages(ctx)
				if err != nil {
					return err
				}
				out.Print(languages)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "env",
		Short: "Show the backend environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context) error {
				env, err := client.Settings.Environment(ctx)
				if err != nil {
					return err
				}
				out.Print(env)
				return nil
			})
		},
	})

	return cmd
}

func newBadgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badge",
		Short: "Badge commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every badge the backend awards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context) error {
				badges, err := client.Badges.List(ctx)
				if err != nil {
					return err
				}
				out.Print(badges)
				return nil
			})
		},
	})

	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context) error {
				env, err := client.Settings.Environment(ctx)
				if err != nil {
					if errors.Is(err, model.ErrUnavailable) {
						out.Print(HealthResult{Status: "unavailable"})
					}
					return err
				}

				out.Print(HealthResult{
					Status:      "ok",
					Environment: env.EnvironmentName,
					Version:     env.Version,
				})
				return nil
			})
		},
	}
}
