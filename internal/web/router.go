package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/boardgametracker/internal/dependencies/clock"
	"github.com/mcoot/boardgametracker/internal/services/badges"
	"github.com/mcoot/boardgametracker/internal/services/games"
	"github.com/mcoot/boardgametracker/internal/services/locations"
	"github.com/mcoot/boardgametracker/internal/services/players"
	"github.com/mcoot/boardgametracker/internal/services/sessions"
	"github.com/mcoot/boardgametracker/internal/services/settings"
	"github.com/mcoot/boardgametracker/internal/web/handler"
	"github.com/mcoot/boardgametracker/internal/web/middleware"
	"github.com/mcoot/boardgametracker/internal/web/sse"
	"github.com/mcoot/boardgametracker/internal/web/static"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger          *slog.Logger
	Clock           clock.Clock
	GameService     *games.Service
	PlayerService   *players.Service
	LocationService *locations.Service
	SessionService  *sessions.Service
	SettingsService *settings.Service
	BadgeService    *badges.Service
	HubManager      *sse.HubManager
	// Images are proxied to this backend URL; empty disables /images/
	BackendURL string
	// StaticDir overrides the embedded stylesheet, for development
	StaticDir string
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()
	settingsMiddleware := middleware.Settings(cfg.SettingsService)

	// Apply global middleware to all routes
	r.Use(middleware.RequestID)
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	// Create handlers
	gameHandler := handler.NewGameHandler(cfg.GameService, cfg.PlayerService, cfg.LocationService, cfg.Logger)
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService, cfg.GameService, cfg.LocationService, cfg.Logger)
	locationHandler := handler.NewLocationHandler(cfg.LocationService, cfg.Logger)
	sessionHandler := handler.NewSessionHandler(cfg.SessionService, cfg.GameService, cfg.PlayerService, cfg.LocationService, clk, cfg.Logger)
	settingsHandler := handler.NewSettingsHandler(cfg.SettingsService, cfg.Logger)
	badgeHandler := handler.NewBadgeHandler(cfg.BadgeService, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(hubManager, cfg.Logger)

	// Static files
	var staticFS http.FileSystem = http.FS(static.Files)
	if cfg.StaticDir != "" {
		staticFS = http.Dir(cfg.StaticDir)
	}
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(staticFS)))

	if cfg.BackendURL != "" {
		if images, err := handler.NewImageProxy(cfg.BackendURL, cfg.Logger); err == nil {
			r.PathPrefix("/images/").Handler(images).Methods(http.MethodGet)
		} else {
			cfg.Logger.Error("image proxy disabled", slog.Any("error", err))
		}
	}

	// SSE streams skip the flash and settings middleware
	r.HandleFunc("/events/{topic}", eventsHandler.Events).Methods(http.MethodGet)

	pages := r.NewRoute().Subrouter()
	pages.Use(flashMiddleware)
	pages.Use(settingsMiddleware)

	pages.HandleFunc("/", handler.Home).Methods(http.MethodGet)

	// Game routes
	pages.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	pages.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	pages.HandleFunc("/games/new", gameHandler.New).Methods(http.MethodGet)
	pages.HandleFunc("/games/bgg", gameHandler.ImportBgg).Methods(http.MethodPost)
	pages.HandleFunc("/games/{id:[0-9]+}", gameHandler.View).Methods(http.MethodGet)
	pages.HandleFunc("/games/{id:[0-9]+}", gameHandler.Update).Methods(http.MethodPost)
	pages.HandleFunc("/games/{id:[0-9]+}/edit", gameHandler.Edit).Methods(http.MethodGet)
	pages.HandleFunc("/games/{id:[0-9]+}/delete", gameHandler.Delete).Methods(http.MethodPost)
	pages.HandleFunc("/games/{id:[0-9]+}/sessions", gameHandler.Sessions).Methods(http.MethodGet)
	pages.HandleFunc("/games/{id:[0-9]+}/sessions/more", gameHandler.SessionsMore).Methods(http.MethodGet)

	// Player routes
	pages.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	pages.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	pages.HandleFunc("/players/new", playerHandler.New).Methods(http.MethodGet)
	pages.HandleFunc("/players/{id:[0-9]+}", playerHandler.View).Methods(http.MethodGet)
	pages.HandleFunc("/players/{id:[0-9]+}", playerHandler.Update).Methods(http.MethodPost)
	pages.HandleFunc("/players/{id:[0-9]+}/edit", playerHandler.Edit).Methods(http.MethodGet)
	pages.HandleFunc("/players/{id:[0-9]+}/delete", playerHandler.Delete).Methods(http.MethodPost)
	pages.HandleFunc("/players/{id:[0-9]+}/sessions", playerHandler.Sessions).Methods(http.MethodGet)
	pages.HandleFunc("/players/{id:[0-9]+}/sessions/more", playerHandler.SessionsMore).Methods(http.MethodGet)

	// Location routes
	pages.HandleFunc("/locations", locationHandler.List).Methods(http.MethodGet)
	pages.HandleFunc("/locations", locationHandler.Create).Methods(http.MethodPost)
	pages.HandleFunc("/locations/{id:[0-9]+}", locationHandler.Update).Methods(http.MethodPost)
	pages.HandleFunc("/locations/{id:[0-9]+}/delete", locationHandler.Delete).Methods(http.MethodPost)

	// Session routes
	pages.HandleFunc("/sessions/new", sessionHandler.New).Methods(http.MethodGet)
	pages.HandleFunc("/sessions/new", sessionHandler.Create).Methods(http.MethodPost)
	pages.HandleFunc("/sessions/new/{gameId:[0-9]+}", sessionHandler.New).Methods(http.MethodGet)
	pages.HandleFunc("/sessions/players", sessionHandler.SelectPlayers).Methods(http.MethodPost)
	pages.HandleFunc("/sessions/update/{sessionId:[0-9]+}", sessionHandler.Edit).Methods(http.MethodGet)
	pages.HandleFunc("/sessions/update/{sessionId:[0-9]+}", sessionHandler.Update).Methods(http.MethodPost)
	pages.HandleFunc("/sessions/{id:[0-9]+}/delete", sessionHandler.Delete).Methods(http.MethodPost)
	pages.HandleFunc("/sessions/{id:[0-9]+}/repeat", sessionHandler.Repeat).Methods(http.MethodPost)
	pages.HandleFunc("/plays/{id:[0-9]+}/delete", sessionHandler.DeletePlay).Methods(http.MethodPost)

	// Settings and badges
	pages.HandleFunc("/settings", settingsHandler.View).Methods(http.MethodGet)
	pages.HandleFunc("/settings", settingsHandler.Update).Methods(http.MethodPost)
	pages.HandleFunc("/badges", badgeHandler.List).Methods(http.MethodGet)

	r.NotFoundHandler = flashMiddleware(settingsMiddleware(http.HandlerFunc(handler.NotFound)))

	return r
}
