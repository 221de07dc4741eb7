// Package fakeapi is an in-memory stand-in for the tracker backend used by
// tests. It serves the same JSON contract the backend client consumes.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/boardgametracker/internal/backend"
	"github.com/mcoot/boardgametracker/internal/model"
)

// Server holds the fake backend state
type Server struct {
	mu sync.Mutex

	games     map[model.GameID]*model.Game
	players   map[model.PlayerID]*model.Player
	locations map[model.LocationID]*model.Location
	sessions  map[model.SessionID]*model.Session
	settings  model.Settings
	badges    []model.Badge
	images    map[string][]byte

	// bgg is the catalogue that POST /game/bgg imports from
	bgg map[int]model.Game

	languages   []model.Language
	environment model.Environment

	nextID   int
	requests map[string]int
	failures map[string]int

	router *mux.Router
}

// New creates an empty fake backend
func New() *Server {
	s := &Server{
		games:     make(map[model.GameID]*model.Game),
		players:   make(map[model.PlayerID]*model.Player),
		locations: make(map[model.LocationID]*model.Location),
		sessions:  make(map[model.SessionID]*model.Session),
		images:    make(map[string][]byte),
		bgg:       make(map[int]model.Game),
		settings:  model.DefaultSettings(),
		languages: []model.Language{
			{Key: "en-US", TranslationKey: "english"},
			{Key: "nl-BE", TranslationKey: "dutch"},
		},
		environment: model.Environment{EnvironmentName: "test", Version: "0.0.0", EnableStatistics: true},
		requests:    make(map[string]int),
		failures:    make(map[string]int),
	}
	s.router = s.routes()
	return s
}

// Start serves the fake backend until the test ends and returns its URL
func (s *Server) Start(t testing.TB) string {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return srv.URL
}

// ServeHTTP counts the request, applies injected failures and routes it
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	key := r.Method + " " + r.URL.Path
	s.requests[key]++
	status, fail := s.failures[key]
	s.mu.Unlock()

	if fail {
		writeError(w, status, "injected failure")
		return
	}
	s.router.ServeHTTP(w, r)
}

// Requests returns how many times method and path were requested
func (s *Server) Requests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+path]
}

// Fail makes every request to method and path answer with status
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Recover removes an injected failure
func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

func (s *Server) id() int {
	s.nextID++
	return s.nextID
}

// AddGame stores g with a fresh id
func (s *Server) AddGame(g model.Game) model.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = model.GameID(s.id())
	if g.State == "" {
		g.State = model.GameStateOwned
	}
	s.games[g.ID] = &g
	return g
}

// AddPlayer stores p with a fresh id
func (s *Server) AddPlayer(p model.Player) model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = model.PlayerID(s.id())
	s.players[p.ID] = &p
	return p
}

// AddLocation stores l with a fresh id
func (s *Server) AddLocation(l model.Location) model.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = model.LocationID(s.id())
	s.locations[l.ID] = &l
	return l
}

// AddSession stores sess with a fresh id
func (s *Server) AddSession(sess model.Session) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ID = model.SessionID(s.id())
	s.sessions[sess.ID] = &sess
	return sess
}

// AddBadge stores b with a fresh id
func (s *Server) AddBadge(b model.Badge) model.Badge {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = model.BadgeID(s.id())
	s.badges = append(s.badges, b)
	return b
}

// AddBggGame makes a game importable by its BoardGameGeek id
func (s *Server) AddBggGame(bggID int, g model.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.BggID = &bggID
	s.bgg[bggID] = g
}

// Game returns a stored game
func (s *Server) Game(id model.GameID) (model.Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return model.Game{}, false
	}
	return *g, true
}

// Session returns a stored session
func (s *Server) Session(id model.SessionID) (model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return model.Session{}, false
	}
	return *sess, true
}

// Counts returns how many games, players, locations and sessions are stored
func (s *Server) Counts() (games, players, locations, sessions int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games), len(s.players), len(s.locations), len(s.sessions)
}

// Image returns uploaded image bytes
func (s *Server) Image(ref string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.images[ref]
	return data, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return false
	}
	return true
}

func newest(sessions []model.Session) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.After(b.Start)
		}
		return a.ID > b.ID
	}
}

func latest(a *time.Time, t time.Time) *time.Time {
	if a == nil || t.After(*a) {
		return &t
	}
	return a
}

// Client returns a backend client talking to a started copy of s
func (s *Server) Client(t testing.TB) *backend.Client {
	t.Helper()
	cfg := backend.DefaultConfig()
	cfg.BaseURL = s.Start(t)
	cfg.Timeout = 5 * time.Second
	return backend.NewClient(cfg)
}
