package factory

import (
	"time"

	"github.com/mcoot/boardgametracker/internal/backend"
	"github.com/mcoot/boardgametracker/internal/dependencies/mocks"
	"github.com/mcoot/boardgametracker/internal/storage/memory"
	"github.com/mcoot/boardgametracker/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	Clock *mocks.Clock
}

// NewTestApp creates an App against the backend at backendURL with an
// in-memory cache and a mocked clock
func NewTestApp(backendURL string) *TestApp {
	store := memory.New()
	clk := mocks.NewClock()

	cfg := backend.DefaultConfig()
	cfg.BaseURL = backendURL
	cfg.Timeout = 5 * time.Second
	client := backend.NewClient(cfg)

	app := newWithDependencies(store, client, clk, testutil.NopLogger())

	return &TestApp{
		App:   app,
		Clock: clk,
	}
}
