package settings

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/query"
	"github.com/mcoot/boardgametracker/internal/storage/memory"
	"github.com/mcoot/boardgametracker/internal/testutil"
	"github.com/mcoot/boardgametracker/internal/testutil/fakeapi"
)

func newService(t *testing.T) (*Service, *fakeapi.Server) {
	logger := testutil.NopLogger()
	api := fakeapi.New()
	return New(api.Client(t).Settings, query.New(memory.New(), logger), logger), api
}

func TestGetIsCached(t *testing.T) {
	service, api := newService(t)
	ctx := context.Background()

	for range 3 {
		settings, err := service.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "EUR", settings.Currency)
	}
	assert.Equal(t, 1, api.Requests(http.MethodGet, "/settings"))
}

func TestUpdateInvalidates(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	_, err := service.Get(ctx)
	require.NoError(t, err)

	next := model.DefaultSettings()
	next.Currency = "USD"
	_, err = service.Update(ctx, &next)
	require.NoError(t, err)

	assert.Equal(t, "USD", service.Current(ctx).Currency)
}

func TestCurrentFallsBackToDefaults(t *testing.T) {
	service, api := newService(t)
	api.Fail(http.MethodGet, "/settings", http.StatusBadGateway)

	assert.Equal(t, model.DefaultSettings(), service.Current(context.Background()))
}

func TestLanguagesAndEnvironment(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	languages, err := service.Languages(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, languages)

	env, err := service.Environment(ctx)
	require.NoError(t, err)
	assert.True(t, env.EnableStatistics)
}
