package sessions

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/paging"
	"github.com/mcoot/boardgametracker/internal/query"
	"github.com/mcoot/boardgametracker/internal/services/games"
	"github.com/mcoot/boardgametracker/internal/services/locations"
	"github.com/mcoot/boardgametracker/internal/services/players"
	"github.com/mcoot/boardgametracker/internal/storage/memory"
	"github.com/mcoot/boardgametracker/internal/testutil"
	"github.com/mcoot/boardgametracker/internal/testutil/fakeapi"
)

type ServiceSuite struct {
	suite.Suite
	api       *fakeapi.Server
	games     *games.Service
	players   *players.Service
	locations *locations.Service
	service   *Service
	ctx       context.Context

	game  model.Game
	ada   model.Player
	bo    model.Player
	home  model.Location
	start time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := testutil.TestLogger(s.T())
	s.api = fakeapi.New()
	client := s.api.Client(s.T())
	cache := query.New(memory.New(), logger)

	s.games = games.New(client.Games, cache, logger)
	s.players = players.New(client.Players, client.Images, cache, logger)
	s.locations = locations.New(client.Locations, cache, logger)
	s.service = New(client.Sessions, client.Plays, s.locations, cache, logger)
	s.ctx = context.Background()

	s.game = s.api.AddGame(model.Game{Title: "Azul", HasScoring: true})
	s.ada = s.api.AddPlayer(model.Player{Name: "Ada"})
	s.bo = s.api.AddPlayer(model.Player{Name: "Bo"})
	s.home = s.api.AddLocation(model.Location{Name: "Home"})
	s.start = time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC)
}

func (s *ServiceSuite) session(ids ...model.PlayerID) *model.Session {
	sess := &model.Session{
		GameID:     s.game.ID,
		LocationID: s.home.ID,
		Start:      s.start,
		Minutes:    40,
		Ended:      true,
	}
	for i, id := range ids {
		sess.PlayerSessions = append(sess.PlayerSessions, model.PlayerSession{PlayerID: id, Won: i == 0})
	}
	return sess
}

// warm fills the cache with every figure a session feeds
func (s *ServiceSuite) warm() {
	_, err := s.games.Stats(s.ctx, s.game.ID)
	s.Require().NoError(err)
	_, err = s.games.Plays(s.ctx, s.game.ID, paging.NewPage(0, 10))
	s.Require().NoError(err)
	_, err = s.players.Stats(s.ctx, s.ada.ID)
	s.Require().NoError(err)
	_, err = s.players.Stats(s.ctx, s.bo.ID)
	s.Require().NoError(err)
	_, err = s.locations.List(s.ctx)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestCreateInvalidatesDerivedFigures() {
	s.warm()

	created, err := s.service.Create(s.ctx, s.session(s.ada.ID), "")
	s.Require().NoError(err)
	s.NotZero(created.ID)

	stats, err := s.games.Stats(s.ctx, s.game.ID)
	s.Require().NoError(err)
	s.Equal(1, stats.PlayCount)

	plays, err := s.games.Plays(s.ctx, s.game.ID, paging.NewPage(0, 10))
	s.Require().NoError(err)
	s.Equal(1, plays.Count)

	adaStats, err := s.players.Stats(s.ctx, s.ada.ID)
	s.Require().NoError(err)
	s.Equal(1, adaStats.PlayCount)

	locs, err := s.locations.List(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, locs[0].PlayCount)

	// Bo did not play, his stats stay cached
	_, err = s.players.Stats(s.ctx, s.bo.ID)
	s.Require().NoError(err)
	s.Equal(1, s.api.Requests(http.MethodGet, "/player/3/stats"))
}

func (s *ServiceSuite) TestCreateWithNewLocation() {
	created, err := s.service.Create(s.ctx, s.session(s.ada.ID), "Cabin")
	s.Require().NoError(err)

	locs, err := s.locations.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(locs, 2)
	s.Equal("Cabin", locs[0].Name)
	s.Equal(locs[0].ID, created.LocationID)
	s.Equal(1, locs[0].PlayCount)
}

func (s *ServiceSuite) TestCreateRejected() {
	sess := s.session()
	_, err := s.service.Create(s.ctx, sess, "")
	s.ErrorIs(err, model.ErrInvalid)
}

func (s *ServiceSuite) TestUpdateInvalidatesPreviousPlayers() {
	created, err := s.service.Create(s.ctx, s.session(s.ada.ID), "")
	s.Require().NoError(err)

	adaStats, err := s.players.Stats(s.ctx, s.ada.ID)
	s.Require().NoError(err)
	s.Equal(1, adaStats.PlayCount)

	moved := s.session(s.bo.ID)
	moved.ID = created.ID
	_, err = s.service.Update(s.ctx, moved, "")
	s.Require().NoError(err)

	adaStats, err = s.players.Stats(s.ctx, s.ada.ID)
	s.Require().NoError(err)
	s.Equal(0, adaStats.PlayCount)

	got, err := s.service.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{s.bo.ID}, got.PlayerIDs())
}

func (s *ServiceSuite) TestDelete() {
	created, err := s.service.Create(s.ctx, s.session(s.ada.ID, s.bo.ID), "")
	s.Require().NoError(err)
	s.warm()

	s.Require().NoError(s.service.Delete(s.ctx, created.ID))

	stats, err := s.games.Stats(s.ctx, s.game.ID)
	s.Require().NoError(err)
	s.Equal(0, stats.PlayCount)

	_, err = s.service.Get(s.ctx, created.ID)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *ServiceSuite) TestQuickLogAndDeletePlay() {
	s.warm()

	created, err := s.service.QuickLog(s.ctx, &model.Play{
		GameID:         s.game.ID,
		LocationID:     s.home.ID,
		Start:          s.start,
		Minutes:        20,
		PlayerSessions: []model.PlayerSession{{PlayerID: s.bo.ID}},
	})
	s.Require().NoError(err)

	boStats, err := s.players.Stats(s.ctx, s.bo.ID)
	s.Require().NoError(err)
	s.Equal(1, boStats.PlayCount)

	s.Require().NoError(s.service.DeletePlay(s.ctx, created.ID))
	boStats, err = s.players.Stats(s.ctx, s.bo.ID)
	s.Require().NoError(err)
	s.Equal(0, boStats.PlayCount)
}

func (s *ServiceSuite) TestDedupe() {
	s.Equal([]string{"a:", "b:"}, dedupe([]string{"a:", "b:", "a:"}))
}
