package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mcoot/boardgametracker/internal/backend"
	"github.com/mcoot/boardgametracker/internal/dependencies/clock"
	"github.com/mcoot/boardgametracker/internal/middleware"
	"github.com/mcoot/boardgametracker/internal/query"
	"github.com/mcoot/boardgametracker/internal/services/badges"
	"github.com/mcoot/boardgametracker/internal/services/games"
	"github.com/mcoot/boardgametracker/internal/services/locations"
	"github.com/mcoot/boardgametracker/internal/services/players"
	"github.com/mcoot/boardgametracker/internal/services/sessions"
	"github.com/mcoot/boardgametracker/internal/services/settings"
	"github.com/mcoot/boardgametracker/internal/storage"
	"github.com/mcoot/boardgametracker/internal/storage/memory"
	redisstorage "github.com/mcoot/boardgametracker/internal/storage/redis"
	"github.com/mcoot/boardgametracker/internal/web"
	"github.com/mcoot/boardgametracker/internal/web/sse"
	"github.com/mcoot/boardgametracker/internal/web/templates/components"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// janitorInterval is how often expired cache entries and idle SSE hubs are
// dropped
const janitorInterval = time.Minute

// App contains all wired application components
type App struct {
	// Query cache and its backing store
	Store storage.Store
	Cache *query.Cache

	// Backend REST client
	Client *backend.Client

	// External dependencies
	Clock  clock.Clock
	Logger *slog.Logger

	// Services
	GameService     *games.Service
	PlayerService   *players.Service
	LocationService *locations.Service
	SessionService  *sessions.Service
	SettingsService *settings.Service
	BadgeService    *badges.Service

	// Live refresh of open pages
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster

	stop      context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Backend configures the REST client. BaseURL is required.
	Backend backend.Config
	// StorageType selects the query cache store ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Backend.BaseURL == "" {
		return nil, errors.New("backend BaseURL is required")
	}

	// Create storage based on type
	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Forward our request ids to the backend
	backendCfg := cfg.Backend
	if backendCfg.RequestID == nil {
		backendCfg.RequestID = middleware.GetRequestID
	}
	client := backend.NewClient(backendCfg)

	return newWithDependencies(store, client, clock.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, client *backend.Client, clk clock.Clock, logger *slog.Logger) *App {
	cache := query.New(store, logger)

	locationService := locations.New(client.Locations, cache, logger)
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, components.StaleNotice, logger)
	broadcaster.Attach(cache)

	ctx, stop := context.WithCancel(context.Background())
	app := &App{
		Store:           store,
		Cache:           cache,
		Client:          client,
		Clock:           clk,
		Logger:          logger,
		GameService:     games.New(client.Games, cache, logger),
		PlayerService:   players.New(client.Players, client.Images, cache, logger),
		LocationService: locationService,
		SessionService:  sessions.New(client.Sessions, client.Plays, locationService, cache, logger),
		SettingsService: settings.New(client.Settings, cache, logger),
		BadgeService:    badges.New(client.Badges, cache, logger),
		HubManager:      hubManager,
		Broadcaster:     broadcaster,
		stop:            stop,
		done:            make(chan struct{}),
	}
	go app.janitor(ctx)
	return app
}

// sweeper is implemented by stores that drop expired entries on demand
type sweeper interface {
	Sweep() int
}

func (a *App) janitor(ctx context.Context) {
	defer close(a.done)
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s, ok := a.Store.(sweeper); ok {
				if n := s.Sweep(); n > 0 {
					a.Logger.Debug("expired cache entries dropped", slog.Int("count", n))
				}
			}
			if n := a.HubManager.DropIdle(); n > 0 {
				a.Logger.Debug("idle sse hubs dropped", slog.Int("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Router builds the web handler over the app's services
func (a *App) Router(staticDir string) http.Handler {
	return web.NewRouter(web.RouterConfig{
		Logger:          a.Logger,
		Clock:           a.Clock,
		GameService:     a.GameService,
		PlayerService:   a.PlayerService,
		LocationService: a.LocationService,
		SessionService:  a.SessionService,
		SettingsService: a.SettingsService,
		BadgeService:    a.BadgeService,
		HubManager:      a.HubManager,
		BackendURL:      a.Client.BaseURL(),
		StaticDir:       staticDir,
	})
}

// Close stops background work, disconnects SSE clients and closes the store
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.stop()
		<-a.done
		a.HubManager.Close()
		err = a.Store.Close()
	})
	return err
}
