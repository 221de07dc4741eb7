package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/boardgametracker/internal/forms"
	"github.com/mcoot/boardgametracker/internal/format"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/paging"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game collection commands",
	}

	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameStatsCmd())
	cmd.AddCommand(newGamePlaysCmd())
	cmd.AddCommand(newGameTopCmd())
	cmd.AddCommand(newGameImportCmd())
	cmd.AddCommand(newGameDeleteCmd())

	return cmd
}

func newGameListCmd() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games in the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := model.GameState(state)
			if state != "" && !filter.Valid() {
				return fmt.Errorf("invalid state %q", state)
			}

			return run(cmd, func(ctx context.Context) error {
				result, err := client.Games.List(ctx)
				if err != nil {
					return err
				}

				games := make([]model.Game, 0, len(result.Items))
				for _, g := range result.Items {
					if state == "" || g.State == filter {
						games = append(games, g)
					}
				}
				out.Print(games)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "Only games in this state (owned, wanted, forTrade, previouslyOwned, notOwned)")
	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "game")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				game, err := client.Games.Get(ctx, model.GameID(id))
				if err != nil {
					return err
				}
				out.Print(game)
				return nil
			})
		},
	}
}

func newGameStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <id>",
		Short: "Show play statistics for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "game")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				var (
					stats    *model.GameStatistics
					settings *model.Settings
				)
				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					var err error
					stats, err = client.Games.Stats(gctx, model.GameID(id))
					return err
				})
				g.Go(func() error {
					var err error
					settings, err = client.Settings.Get(gctx)
					return err
				})
				if err := g.Wait(); err != nil {
					return err
				}

				out.Print(GameStats{GameStatistics: stats, currency: settings.Currency})
				return nil
			})
		},
	}
}

func newGamePlaysCmd() *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "plays <id>",
		Short: "List sessions of a game, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "game")
			if err != nil {
				return err
			}

			// --page is 1-based like the web UI
			p := paging.NewPage(page-1, size)

			return run(cmd, func(ctx context.Context) error {
				result, err := client.Games.Plays(ctx, model.GameID(id), p.Skip(), p.Size)
				if err != nil {
					return err
				}
				out.Print(SessionPage{
					Page:  p.Number + 1,
					Pages: p.TotalPages(result.Count),
					Count: result.Count,
					Items: result.Items,
				})
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", paging.DefaultSize, "Sessions per page")
	return cmd
}

func newGameTopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "top <id>",
		Short: "Show the players who played a game most",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "game")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				var (
					top     []model.TopPlayer
					players *model.ListResult[model.Player]
				)
				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					var err error
					top, err = client.Games.Top(gctx, model.GameID(id))
					return err
				})
				g.Go(func() error {
					var err error
					players, err = client.Players.List(gctx)
					return err
				})
				if err := g.Wait(); err != nil {
					return err
				}

				names := make(map[model.PlayerID]string, len(players.Items))
				for _, p := range players.Items {
					names[p.ID] = p.Name
				}

				rows := make([]TopPlayerRow, 0, len(top))
				for _, tp := range top {
					name, ok := names[tp.PlayerID]
					if !ok {
						name = fmt.Sprintf("player %d", tp.PlayerID)
					}
					rows = append(rows, TopPlayerRow{
						TopPlayer:  tp,
						Name:       name,
						WinPercent: format.GetPercentage(float64(tp.Wins), float64(tp.PlayCount)),
					})
				}
				out.Print(rows)
				return nil
			})
		},
	}
}

func newGameImportCmd() *cobra.Command {
	var (
		state, price, added string
		scoring             bool
	)

	cmd := &cobra.Command{
		Use:   "import <bgg-id>",
		Short: "Import a game from BoardGameGeek",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, errs := forms.BggImportForm{
				BggID:        args[0],
				State:        state,
				Price:        price,
				AdditionDate: added,
				HasScoring:   scoring,
			}.Validate()
			if err := errs.Err(); err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				result, err := client.Games.ImportBgg(ctx, req)
				if err != nil {
					return err
				}

				switch result.State {
				case model.ResultSuccess, model.ResultFound:
					if result.Model != nil && cfg.Output == OutputText {
						out.PrintMessage(fmt.Sprintf("Imported %s (%d)", result.Model.Title, result.Model.ID))
						return nil
					}
					out.Print(result)
					return nil
				case model.ResultDuplicate:
					out.Print(result)
					out.PrintWarning("game is already in the collection")
					return fmt.Errorf("BoardGameGeek game %d: %w", req.BggID, model.ErrDuplicate)
				case model.ResultNotFound:
					return fmt.Errorf("BoardGameGeek game %d: %w", req.BggID, model.ErrNotFound)
				default:
					return fmt.Errorf("import of BoardGameGeek game %d failed: %s", req.BggID, result.State)
				}
			})
		},
	}

	cmd.Flags().StringVar(&state, "state", string(model.GameStateOwned), "Ownership state")
	cmd.Flags().StringVar(&price, "price", "", "Price paid")
	cmd.Flags().StringVar(&added, "added", "", "Addition date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&scoring, "scoring", false, "Sessions record scores")
	return cmd
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a game and its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "game")
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context) error {
				if err := client.Games.Delete(ctx, model.GameID(id)); err != nil {
					return err
				}
				out.PrintMessage("Game " + strconv.Itoa(id) + " deleted")
				return nil
			})
		},
	}
}
