package fakeapi

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/boardgametracker/internal/model"
)

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/game", s.listGames).Methods(http.MethodGet)
	r.HandleFunc("/game", s.createGame).Methods(http.MethodPost)
	r.HandleFunc("/game", s.updateGame).Methods(http.MethodPut)
	r.HandleFunc("/game/bgg", s.importBgg).Methods(http.MethodPost)
	r.HandleFunc("/game/{id:[0-9]+}", s.getGame).Methods(http.MethodGet)
	r.HandleFunc("/game/{id:[0-9]+}", s.deleteGame).Methods(http.MethodDelete)
	r.HandleFunc("/game/{id:[0-9]+}/stats", s.gameStats).Methods(http.MethodGet)
	r.HandleFunc("/game/{id:[0-9]+}/plays", s.gamePlays).Methods(http.MethodGet)
	r.HandleFunc("/game/{id:[0-9]+}/top", s.gameTop).Methods(http.MethodGet)

	r.HandleFunc("/player", s.listPlayers).Methods(http.MethodGet)
	r.HandleFunc("/player", s.createPlayer).Methods(http.MethodPost)
	r.HandleFunc("/player", s.updatePlayer).Methods(http.MethodPut)
	r.HandleFunc("/player/{id:[0-9]+}", s.getPlayer).Methods(http.MethodGet)
	r.HandleFunc("/player/{id:[0-9]+}", s.deletePlayer).Methods(http.MethodDelete)
	r.HandleFunc("/player/{id:[0-9]+}/stats", s.playerStats).Methods(http.MethodGet)
	r.HandleFunc("/player/{id:[0-9]+}/sessions", s.playerSessions).Methods(http.MethodGet)

	r.HandleFunc("/location", s.listLocations).Methods(http.MethodGet)
	r.HandleFunc("/location", s.createLocation).Methods(http.MethodPost)
	r.HandleFunc("/location", s.updateLocation).Methods(http.MethodPut)
	r.HandleFunc("/location/{id:[0-9]+}", s.deleteLocation).Methods(http.MethodDelete)

	r.HandleFunc("/session", s.createSession).Methods(http.MethodPost)
	r.HandleFunc("/session", s.updateSession).Methods(http.MethodPut)
	r.HandleFunc("/session/{id:[0-9]+}", s.getSession).Methods(http.MethodGet)
	r.HandleFunc("/session/{id:[0-9]+}", s.deleteSession).Methods(http.MethodDelete)
	r.HandleFunc("/play", s.createPlay).Methods(http.MethodPost)
	r.HandleFunc("/play/{id:[0-9]+}", s.deleteSession).Methods(http.MethodDelete)

	r.HandleFunc("/settings", s.getSettings).Methods(http.MethodGet)
	r.HandleFunc("/settings", s.updateSettings).Methods(http.MethodPut)
	r.HandleFunc("/settings/languages", s.getLanguages).Methods(http.MethodGet)
	r.HandleFunc("/settings/environment", s.getEnvironment).Methods(http.MethodGet)
	r.HandleFunc("/badges", s.listBadges).Methods(http.MethodGet)
	r.HandleFunc("/image", s.uploadImage).Methods(http.MethodPost)
	r.HandleFunc("/images/{ref:.+}", s.serveImage).Methods(http.MethodGet)

	return r
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func pageParams(r *http.Request) (skip, take int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	take, err := strconv.Atoi(r.URL.Query().Get("take"))
	if err != nil || take <= 0 {
		take = 10
	}
	return max(skip, 0), take
}

func page(sessions []model.Session, skip, take int) model.ListResult[model.Session] {
	sort.Slice(sessions, newest(sessions))
	count := len(sessions)
	if skip > count {
		skip = count
	}
	end := min(skip+take, count)
	return model.ListResult[model.Session]{Items: sessions[skip:end], Count: count}
}

// Games

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Game, 0, len(s.games))
	for _, g := range s.games {
		items = append(items, *g)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	writeJSON(w, http.StatusOK, model.ListResult[model.Game]{Items: items, Count: len(items)})
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[model.GameID(pathID(r))]
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	var g model.Game
	if !decode(w, r, &g) {
		return
	}
	if strings.TrimSpace(g.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.games {
		if strings.EqualFold(existing.Title, g.Title) {
			writeError(w, http.StatusConflict, "game already exists")
			return
		}
	}
	g.ID = model.GameID(s.id())
	s.games[g.ID] = &g
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) updateGame(w http.ResponseWriter, r *http.Request) {
	var g model.Game
	if !decode(w, r, &g) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	s.games[g.ID] = &g
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) deleteGame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.GameID(pathID(r))
	if _, ok := s.games[id]; !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	delete(s.games, id)
	for sid, sess := range s.sessions {
		if sess.GameID == id {
			delete(s.sessions, sid)
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) importBgg(w http.ResponseWriter, r *http.Request) {
	var req model.BggImport
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.games {
		if g.BggID != nil && *g.BggID == req.BggID {
			writeJSON(w, http.StatusOK, model.SearchResult[model.Game]{State: model.ResultDuplicate})
			return
		}
	}

	found, ok := s.bgg[req.BggID]
	if !ok {
		writeJSON(w, http.StatusOK, model.SearchResult[model.Game]{State: model.ResultNotFound})
		return
	}

	g := found
	g.ID = model.GameID(s.id())
	g.State = req.State
	g.PricePaid = req.Price
	g.AdditionDate = req.AdditionDate
	g.HasScoring = req.HasScoring
	s.games[g.ID] = &g
	writeJSON(w, http.StatusOK, model.SearchResult[model.Game]{State: model.ResultSuccess, Model: &g})
}

func (s *Server) sessionsWhere(match func(*model.Session) bool) []model.Session {
	var out []model.Session
	for _, sess := range s.sessions {
		if match(sess) {
			out = append(out, *sess)
		}
	}
	return out
}

func (s *Server) gameStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.GameID(pathID(r))
	g, ok := s.games[id]
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	sessions := s.sessionsWhere(func(sess *model.Session) bool { return sess.GameID == id })
	stats := model.GameStatistics{PlayCount: len(sessions), ExpansionCount: len(g.Expansions)}
	players := map[model.PlayerID]struct{}{}
	var scoreSum float64
	var scoreCount int
	for _, sess := range sessions {
		stats.TotalPlayedTime += sess.Minutes
		stats.LastPlayed = latest(stats.LastPlayed, sess.Start)
		for _, ps := range sess.PlayerSessions {
			players[ps.PlayerID] = struct{}{}
			if ps.Score != nil {
				scoreSum += *ps.Score
				scoreCount++
				if stats.HighScore == nil || *ps.Score > *stats.HighScore {
					high := *ps.Score
					stats.HighScore = &high
				}
			}
		}
	}
	stats.UniquePlayerCount = len(players)
	if scoreCount > 0 {
		avg := scoreSum / float64(scoreCount)
		stats.AverageScore = &avg
	}
	if len(sessions) > 0 {
		avg := float64(stats.TotalPlayedTime) / float64(len(sessions))
		stats.AveragePlayTime = &avg
		if g.PricePaid != nil {
			ppp := *g.PricePaid / float64(len(sessions))
			stats.PricePerPlay = &ppp
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) gamePlays(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.GameID(pathID(r))
	if _, ok := s.games[id]; !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	skip, take := pageParams(r)
	writeJSON(w, http.StatusOK, page(s.sessionsWhere(func(sess *model.Session) bool { return sess.GameID == id }), skip, take))
}

func (s *Server) gameTop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.GameID(pathID(r))
	if _, ok := s.games[id]; !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	byPlayer := map[model.PlayerID]*model.TopPlayer{}
	for _, sess := range s.sessionsWhere(func(sess *model.Session) bool { return sess.GameID == id }) {
		for _, ps := range sess.PlayerSessions {
			tp, ok := byPlayer[ps.PlayerID]
			if !ok {
				tp = &model.TopPlayer{PlayerID: ps.PlayerID}
				byPlayer[ps.PlayerID] = tp
			}
			tp.PlayCount++
			if ps.Won {
				tp.Wins++
			}
		}
	}

	top := make([]model.TopPlayer, 0, len(byPlayer))
	for _, tp := range byPlayer {
		top = append(top, *tp)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Wins != top[j].Wins {
			return top[i].Wins > top[j].Wins
		}
		return top[i].PlayerID < top[j].PlayerID
	})
	if len(top) > 5 {
		top = top[:5]
	}
	writeJSON(w, http.StatusOK, top)
}

// Players

func (s *Server) listPlayers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		items = append(items, *p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	writeJSON(w, http.StatusOK, model.ListResult[model.Player]{Items: items, Count: len(items)})
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[model.PlayerID(pathID(r))]
	if !ok {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createPlayer(w http.ResponseWriter, r *http.Request) {
	var p model.Player
	if !decode(w, r, &p) {
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = model.PlayerID(s.id())
	s.players[p.ID] = &p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updatePlayer(w http.ResponseWriter, r *http.Request) {
	var p model.Player
	if !decode(w, r, &p) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.players[p.ID]
	if !ok {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	p.Badges = existing.Badges
	s.players[p.ID] = &p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePlayer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.PlayerID(pathID(r))
	if _, ok := s.players[id]; !ok {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	delete(s.players, id)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) playedBy(id model.PlayerID) []model.Session {
	return s.sessionsWhere(func(sess *model.Session) bool {
		for _, ps := range sess.PlayerSessions {
			if ps.PlayerID == id {
				return true
			}
		}
		return false
	})
}

func (s *Server) playerStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.PlayerID(pathID(r))
	if _, ok := s.players[id]; !ok {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}

	sessions := s.playedBy(id)
	stats := model.PlayerStatistics{PlayCount: len(sessions)}
	perGame := map[model.GameID]int{}
	for _, sess := range sessions {
		stats.TotalPlayedTime += sess.Minutes
		perGame[sess.GameID]++
		for _, ps := range sess.PlayerSessions {
			if ps.PlayerID == id && ps.Won {
				stats.WinCount++
			}
		}
	}
	stats.DistinctGameCount = len(perGame)

	var best model.GameID
	for gid, n := range perGame {
		if n > perGame[best] || (n == perGame[best] && gid < best) {
			best = gid
		}
	}
	if g, ok := s.games[best]; ok {
		stats.MostPlayedGame = &model.Link{ID: int(g.ID), Name: g.Title}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) playerSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.PlayerID(pathID(r))
	if _, ok := s.players[id]; !ok {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	skip, take := pageParams(r)
	writeJSON(w, http.StatusOK, page(s.playedBy(id), skip, take))
}

// Locations

func (s *Server) listLocations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Location, 0, len(s.locations))
	for _, l := range s.locations {
		loc := *l
		loc.PlayCount = len(s.sessionsWhere(func(sess *model.Session) bool { return sess.LocationID == l.ID }))
		items = append(items, loc)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createLocation(w http.ResponseWriter, r *http.Request) {
	var l model.Location
	if !decode(w, r, &l) {
		return
	}
	if strings.TrimSpace(l.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = model.LocationID(s.id())
	s.locations[l.ID] = &l
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) updateLocation(w http.ResponseWriter, r *http.Request) {
	var l model.Location
	if !decode(w, r, &l) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[l.ID]; !ok {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}
	s.locations[l.ID] = &l
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) deleteLocation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.LocationID(pathID(r))
	if _, ok := s.locations[id]; !ok {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}
	delete(s.locations, id)
	w.WriteHeader(http.StatusOK)
}

// Sessions

func (s *Server) validSession(sess *model.Session) string {
	if _, ok := s.games[sess.GameID]; !ok {
		return "unknown game"
	}
	if _, ok := s.locations[sess.LocationID]; !ok {
		return "unknown location"
	}
	if len(sess.PlayerSessions) == 0 {
		return "a session needs players"
	}
	for _, ps := range sess.PlayerSessions {
		if _, ok := s.players[ps.PlayerID]; !ok {
			return fmt.Sprintf("unknown player %d", ps.PlayerID)
		}
	}
	return ""
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[model.SessionID(pathID(r))]
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var sess model.Session
	if !decode(w, r, &sess) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if msg := s.validSession(&sess); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	sess.ID = model.SessionID(s.id())
	s.sessions[sess.ID] = &sess
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	var sess model.Session
	if !decode(w, r, &sess) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if msg := s.validSession(&sess); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	s.sessions[sess.ID] = &sess
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.SessionID(pathID(r))
	if _, ok := s.sessions[id]; !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	delete(s.sessions, id)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) createPlay(w http.ResponseWriter, r *http.Request) {
	var play model.Play
	if !decode(w, r, &play) {
		return
	}

	sess := model.Session{
		GameID:         play.GameID,
		LocationID:     play.LocationID,
		Start:          play.Start,
		Minutes:        play.Minutes,
		Ended:          true,
		PlayerSessions: play.PlayerSessions,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if msg := s.validSession(&sess); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	sess.ID = model.SessionID(s.id())
	s.sessions[sess.ID] = &sess
	writeJSON(w, http.StatusOK, sess)
}

// Settings, badges and images

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.settings)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if !decode(w, r, &settings) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) getLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.languages)
}

func (s *Server) getEnvironment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.environment)
}

func (s *Server) listBadges(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	badges := make([]model.Badge, len(s.badges))
	copy(badges, s.badges)
	writeJSON(w, http.StatusOK, badges)
}

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ref := fmt.Sprintf("%s/%d-%s", r.FormValue("type"), s.id(), header.Filename)
	s.images[ref] = data
	writeJSON(w, http.StatusOK, model.ImageUpload{Image: ref})
}

func (s *Server) serveImage(w http.ResponseWriter, r *http.Request) {
	data, ok := s.Image(mux.Vars(r)["ref"])
	if !ok {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}
