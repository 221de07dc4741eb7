package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mcoot/boardgametracker/internal/backend"
	"github.com/mcoot/boardgametracker/internal/forms"
	"github.com/mcoot/boardgametracker/internal/model"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerListCmd())
	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerCreateCmd())
	cmd.AddCommand(newPlayerDeleteCmd())
	cmd.AddCommand(newPlayerStatsCmd())

	return cmd
}

func newPlayerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List players",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context) error {
				result, err := client.Players.List(ctx)
				if err != nil {
					return err
				}
				out.Print(result.Items)
				return nil
			})
		},
	}
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a player and their badges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "player")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				player, err := client.Players.Get(ctx, model.PlayerID(id))
				if err != nil {
					return err
				}
				out.Print(player)
				return nil
			})
		},
	}
}

func newPlayerCreateCmd() *cobra.Command {
	var name, image string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a player, optionally with a profile picture",
		RunE: func(cmd *cobra.Command, args []string) error {
			player, errs := forms.PlayerForm{Name: name}.Validate()
			if err := errs.Err(); err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				if image != "" {
					ref, err := uploadProfileImage(ctx, image)
					if err != nil {
						return err
					}
					player.Image = ref
				}

				created, err := client.Players.Create(ctx, player)
				if err != nil {
					return err
				}
				out.Print(created)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name (required)")
	cmd.Flags().StringVar(&image, "image", "", "Path to a profile picture")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func uploadProfileImage(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	return client.Images.Upload(ctx, backend.ImageTypeProfile, filepath.Base(path), f)
}

func newPlayerDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "player")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				if err := client.Players.Delete(ctx, model.PlayerID(id)); err != nil {
					return err
				}
				out.PrintMessage(fmt.Sprintf("Player %d deleted", id))
				return nil
			})
		},
	}
}

func newPlayerStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <id>",
		Short: "Show play statistics for a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "player")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				stats, err := client.Players.Stats(ctx, model.PlayerID(id))
				if err != nil {
					return err
				}
				out.Print(stats)
				return nil
			})
		},
	}
}
