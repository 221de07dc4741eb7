package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/boardgametracker/internal/dependencies/clock"
	"github.com/mcoot/boardgametracker/internal/forms"
	"github.com/mcoot/boardgametracker/internal/model"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Play session commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "session")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				session, err := client.Sessions.Get(ctx, model.SessionID(id))
				if err != nil {
					return err
				}
				out.Print(session)
				return nil
			})
		},
	})
	cmd.AddCommand(newSessionAddCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "session")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				if err := client.Sessions.Delete(ctx, model.SessionID(id)); err != nil {
					return err
				}
				out.PrintMessage(fmt.Sprintf("Session %d deleted", id))
				return nil
			})
		},
	})

	return cmd
}

func newSessionAddCmd() *cobra.Command {
	var (
		game, location, newLocation string
		start, minutes, comment     string
		players                     []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a play session",
		Example: `  bgtrack session add --game 3 --location 1 --player 1:42:won --player 2:37
  bgtrack session add --game 5 --new-location "Cafe" --player 4:won,first`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if start == "" {
				start = clock.StartOfMinute(clock.System).Format(forms.DateTimeLayout)
			}
			form := forms.SessionForm{
				GameID:      game,
				LocationID:  location,
				NewLocation: strings.TrimSpace(newLocation),
				Start:       start,
				Minutes:     minutes,
				Comment:     strings.TrimSpace(comment),
			}
			for _, raw := range players {
				entry, err := parsePlayerEntry(raw)
				if err != nil {
					return err
				}
				form.Players = form.Players.Add(entry)
			}

			gameID, err := parseID(game, "game")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				g, err := client.Games.Get(ctx, model.GameID(gameID))
				if err != nil {
					return err
				}

				req, errs := form.Validate(forms.PlayerEntrySchema(g.HasScoring))
				if err := errs.Err(); err != nil {
					return err
				}

				if req.NewLocation != "" {
					created, err := client.Locations.Create(ctx, &model.Location{Name: req.NewLocation})
					if err != nil {
						return fmt.Errorf("failed to create location: %w", err)
					}
					req.Session.LocationID = created.ID
				}

				session, err := client.Sessions.Create(ctx, req.Session)
				if err != nil {
					return err
				}
				out.Print(session)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Game id (required)")
	cmd.Flags().StringVar(&location, "location", "", "Location id")
	cmd.Flags().StringVar(&newLocation, "new-location", "", "Create a location with this name")
	cmd.Flags().StringVar(&start, "start", "", "Start time (YYYY-MM-DDTHH:MM, default now)")
	cmd.Flags().StringVar(&minutes, "minutes", "60", "Duration in minutes")
	cmd.Flags().StringVar(&comment, "comment", "", "Comment")
	cmd.Flags().StringArrayVar(&players, "player", nil, "Participant as id[:score][:won,first,bot]; repeatable")
	_ = cmd.MarkFlagRequired("game")
	cmd.MarkFlagsMutuallyExclusive("location", "new-location")

	return cmd
}

// parsePlayerEntry reads id[:score][:flags] where flags is a comma
// separated list of won, first and bot. A lone flag list may stand in for
// the score, as in 4:won.
func parsePlayerEntry(raw string) (forms.PlayerEntry, error) {
	parts := strings.Split(raw, ":")
	if len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return forms.PlayerEntry{}, fmt.Errorf("invalid player %q: want id[:score][:flags]", raw)
	}

	entry := forms.PlayerEntry{PlayerID: strings.TrimSpace(parts[0])}
	rest := parts[1:]
	if len(rest) > 0 {
		if _, err := strconv.ParseFloat(rest[0], 64); err == nil || rest[0] == "" {
			entry.Score = rest[0]
			rest = rest[1:]
		}
	}
	if len(rest) > 1 {
		return forms.PlayerEntry{}, fmt.Errorf("invalid player %q: want id[:score][:flags]", raw)
	}
	if len(rest) == 1 {
		for _, flag := range strings.Split(rest[0], ",") {
			switch strings.TrimSpace(flag) {
			case "won":
				entry.Won = true
			case "first":
				entry.FirstPlay = true
			case "bot":
				entry.IsBot = true
			case "":
			default:
				return forms.PlayerEntry{}, fmt.Errorf("invalid player %q: unknown flag %q", raw, flag)
			}
		}
	}
	return entry, nil
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Quick-logged play commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a quick-logged play",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "play")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				if err := client.Plays.Delete(ctx, model.SessionID(id)); err != nil {
					return err
				}
				out.PrintMessage(fmt.Sprintf("Play %d deleted", id))
				return nil
			})
		},
	})

	return cmd
}
