package factory

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/paging"
	"github.com/mcoot/boardgametracker/internal/testutil/fakeapi"
	"github.com/mcoot/boardgametracker/internal/web/sse"
)

type IntegrationSuite struct {
	suite.Suite
	api *fakeapi.Server
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.api = fakeapi.New()
	s.app = NewTestApp(s.api.Start(s.T()))
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func score(v float64) *float64 { return &v }

// Test: Recording a session refreshes the game's cached statistics
func (s *IntegrationSuite) TestSessionCreateRefreshesStats() {
	game := s.api.AddGame(model.Game{Title: "Azul", HasScoring: true})
	alice := s.api.AddPlayer(model.Player{Name: "Alice"})
	bob := s.api.AddPlayer(model.Player{Name: "Bob"})

	stats, err := s.app.GameService.Stats(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(0, stats.PlayCount)

	// A second read is served from the cache
	_, err = s.app.GameService.Stats(s.ctx, game.ID)
	s.Require().NoError(err)
	statsPath := "/game/" + strconv.Itoa(int(game.ID)) + "/stats"
	s.Equal(1, s.api.Requests(http.MethodGet, statsPath))

	session := &model.Session{
		GameID:  game.ID,
		Start:   s.app.Clock.Now(),
		Minutes: 40,
		PlayerSessions: []model.PlayerSession{
			{PlayerID: alice.ID, Score: score(62), Won: true},
			{PlayerID: bob.ID, Score: score(48)},
		},
	}
	created, err := s.app.SessionService.Create(s.ctx, session, "Kitchen table")
	s.Require().NoError(err)
	s.NotZero(created.ID)
	s.NotZero(created.LocationID)

	stats, err = s.app.GameService.Stats(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(1, stats.PlayCount)
	s.Equal(40, stats.TotalPlayedTime)
	s.Require().NotNil(stats.HighScore)
	s.InDelta(62, *stats.HighScore, 0.001)
	s.Equal(2, s.api.Requests(http.MethodGet, statsPath))

	locations, err := s.app.LocationService.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(locations, 1)
	s.Equal("Kitchen table", locations[0].Name)
}

// Test: Game plays are paged newest first
func (s *IntegrationSuite) TestGamePlaysPaging() {
	game := s.api.AddGame(model.Game{Title: "Cascadia"})
	start := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	for i := range 12 {
		s.api.AddSession(model.Session{GameID: game.ID, Start: start.Add(time.Duration(i) * time.Hour), Minutes: 30})
	}

	first, err := s.app.GameService.Plays(s.ctx, game.ID, paging.NewPage(0, 10))
	s.Require().NoError(err)
	s.Equal(12, first.Count)
	s.Len(first.Items, 10)
	s.True(first.Items[0].Start.After(first.Items[9].Start))

	second, err := s.app.GameService.Plays(s.ctx, game.ID, paging.NewPage(1, 10))
	s.Require().NoError(err)
	s.Len(second.Items, 2)
}

// Test: BGG import distinguishes a new game from a duplicate
func (s *IntegrationSuite) TestBggImportFlow() {
	s.api.AddBggGame(174430, model.Game{Title: "Gloomhaven"})

	game, state, err := s.app.GameService.ImportBgg(s.ctx, &model.BggImport{BggID: 174430, State: model.GameStateOwned})
	s.Require().NoError(err)
	s.Equal(model.ResultSuccess, state)
	s.Require().NotNil(game)
	s.Equal("Gloomhaven", game.Title)

	games, err := s.app.GameService.List(s.ctx, "")
	s.Require().NoError(err)
	s.Len(games, 1)

	game, state, err = s.app.GameService.ImportBgg(s.ctx, &model.BggImport{BggID: 174430, State: model.GameStateOwned})
	s.Require().NoError(err)
	s.Equal(model.ResultDuplicate, state)
	s.Nil(game)
}

// Test: Mutations notify open pages of the affected resource
func (s *IntegrationSuite) TestMutationBroadcastsToSubscribers() {
	game := s.api.AddGame(model.Game{Title: "Azul"})

	client := sse.NewClient()
	hub := s.app.HubManager.Subscribe("game", client)
	s.Eventually(func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	game.Title = "Azul: Summer Pavilion"
	_, err := s.app.GameService.Update(s.ctx, &game)
	s.Require().NoError(err)

	select {
	case msg := <-client.Messages():
		s.Contains(string(msg), "event: invalidated")
	case <-time.After(time.Second):
		s.Fail("no invalidation event received")
	}
}

// Test: Close is safe to call more than once
func (s *IntegrationSuite) TestCloseIsIdempotent() {
	s.Require().NoError(s.app.Close())
	s.Require().NoError(s.app.Close())
}
