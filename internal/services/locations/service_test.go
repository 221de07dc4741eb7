package locations

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
	return New(api.Client(t).Locations, query.New(memory.New(), logger), logger), api
}

func TestLocationLifecycle(t *testing.T) {
	service, api := newService(t)
	ctx := context.Background()

	kitchen, err := service.Create(ctx, "Kitchen")
	require.NoError(t, err)
	_, err = service.Create(ctx, "attic")
	require.NoError(t, err)

	locations, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "attic", locations[0].Name)

	kitchen.Name = "Dining room"
	_, err = service.Update(ctx, kitchen)
	require.NoError(t, err)

	byID, err := service.Lookup(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dining room", byID[kitchen.ID].Name)

	require.NoError(t, service.Delete(ctx, kitchen.ID))
	locations, err = service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, locations, 1)

	assert.Equal(t, 3, api.Requests(http.MethodGet, "/location"))
}

func TestCreateRejectsBlankName(t *testing.T) {
	service, _ := newService(t)

	_, err := service.Create(context.Background(), " ")
	assert.ErrorIs(t, err, model.ErrInvalid)
}
