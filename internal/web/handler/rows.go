package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/paging"
	"github.com/mcoot/boardgametracker/internal/services/games"
	"github.com/mcoot/boardgametracker/internal/services/locations"
	"github.com/mcoot/boardgametracker/internal/services/players"
	"github.com/mcoot/boardgametracker/internal/web/templates/components"
	"github.com/mcoot/boardgametracker/internal/web/templates/pages"
)

// directory resolves the ids inside sessions to the records they point at
type directory struct {
	games     map[model.GameID]model.Game
	players   map[model.PlayerID]model.Player
	locations map[model.LocationID]model.Location
}

// rowSources loads directories and pages of sessions
type rowSources struct {
	games     *games.Service
	players   *players.Service
	locations *locations.Service
}

// directory loads the three lookups concurrently
func (s rowSources) directory(ctx context.Context) (*directory, error) {
	d := &directory{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.games.List(ctx, "")
		if err != nil {
			return err
		}
		d.games = make(map[model.GameID]model.Game, len(list))
		for _, game := range list {
			d.games[game.ID] = game
		}
		return nil
	})
	g.Go(func() error {
		var err error
		d.players, err = s.players.Lookup(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.locations, err = s.locations.Lookup(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *directory) rows(sessions []model.Session) []components.SessionRow {
	rows := make([]components.SessionRow, 0, len(sessions))
	for _, s := range sessions {
		row := components.SessionRow{
			Session:  s,
			Game:     d.game(s.GameID),
			Location: d.location(s.LocationID),
		}
		for _, ps := range s.PlayerSessions {
			row.Participants = append(row.Participants, components.Participant{
				PlayerSession: ps,
				Player:        d.player(ps.PlayerID),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// Records deleted since the session was stored render as placeholders

func (d *directory) game(id model.GameID) model.Game {
	if g, ok := d.games[id]; ok {
		return g
	}
	return model.Game{ID: id, Title: "Unknown game"}
}

func (d *directory) player(id model.PlayerID) model.Player {
	if p, ok := d.players[id]; ok {
		return p
	}
	return model.Player{ID: id, Name: "Unknown player"}
}

func (d *directory) location(id model.LocationID) model.Location {
	if l, ok := d.locations[id]; ok {
		return l
	}
	return model.Location{ID: id, Name: "Unknown location"}
}

// sessionPager fetches one page of a session history
type sessionPager func(ctx context.Context, page paging.Page) (*model.ListResult[model.Session], error)

// sessionsData loads one table page plus the directory to resolve it
func (s rowSources) sessionsData(ctx context.Context, fetch sessionPager, pageNumber int) (pages.SessionsData, error) {
	page := paging.NewPage(pageNumber-1, paging.DefaultSize)

	var (
		result *model.ListResult[model.Session]
		dir    *directory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = fetch(gctx, page)
		return err
	})
	g.Go(func() error {
		var err error
		dir, err = s.directory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return pages.SessionsData{}, err
	}

	return pages.SessionsData{
		Rows:       dir.rows(result.Items),
		Count:      result.Count,
		Page:       page.Number + 1,
		TotalPages: page.TotalPages(result.Count),
	}, nil
}

// moreData loads one page of the load more list. Sessions in seen were
// shown by the previous page and are left out, so a row pushed across the
// page boundary by an insert is not appended twice.
func (s rowSources) moreData(ctx context.Context, fetch sessionPager, pageNumber int, seen []model.SessionID) (pages.SessionsData, error) {
	page := paging.NewPage(pageNumber-1, paging.DefaultSize)

	var (
		result *model.ListResult[model.Session]
		dir    *directory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = fetch(gctx, page)
		return err
	})
	g.Go(func() error {
		var err error
		dir, err = s.directory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return pages.SessionsData{}, err
	}

	acc := paging.NewAccumulator(func(s model.Session) model.SessionID { return s.ID })
	acc.Skip(seen...)
	acc.Merge(result.Items)

	shown := make([]model.SessionID, 0, len(result.Items))
	for _, session := range result.Items {
		shown = append(shown, session.ID)
	}

	return pages.SessionsData{
		Rows:    dir.rows(acc.Items()),
		Count:   result.Count,
		Page:    page.Number + 1,
		HasMore: page.HasNext(result.Count),
		Seen:    shown,
	}, nil
}

// maxSeen bounds the seen ids read from a load more request
const maxSeen = 2 * paging.DefaultSize

// seenIDs reads the comma separated ?seen= ids, ignoring malformed entries
func seenIDs(r *http.Request) []model.SessionID {
	raw := r.URL.Query().Get("seen")
	if raw == "" {
		return nil
	}
	var ids []model.SessionID
	for _, part := range strings.Split(raw, ",") {
		if len(ids) == maxSeen {
			break
		}
		if id, err := strconv.Atoi(part); err == nil && id > 0 {
			ids = append(ids, model.SessionID(id))
		}
	}
	return ids
}
