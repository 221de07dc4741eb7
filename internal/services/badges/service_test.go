package badges

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/query"
	"github.com/mcoot/boardgametracker/internal/storage/memory"
	"github.com/mcoot/boardgametracker/internal/testutil"
	"github.com/mcoot/boardgametracker/internal/testutil/fakeapi"
)

func TestGrouped(t *testing.T) {
	logger := testutil.NopLogger()
	api := fakeapi.New()
	api.AddBadge(model.Badge{Type: model.BadgeTypeWins, Level: model.BadgeLevelGold, TitleKey: "wins.gold"})
	api.AddBadge(model.Badge{Type: model.BadgeTypeFirstTry, TitleKey: "first-try"})
	api.AddBadge(model.Badge{Type: model.BadgeTypeWins, Level: model.BadgeLevelGreen, TitleKey: "wins.green"})
	service := New(api.Client(t).Badges, query.New(memory.New(), logger), logger)

	groups, err := service.Grouped(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, model.BadgeTypeWins, groups[0].Type)
	assert.Equal(t, []string{"wins.green", "wins.gold"}, keys(groups[0].Badges))
	assert.Equal(t, model.BadgeTypeFirstTry, groups[1].Type)
}

func TestHighest(t *testing.T) {
	earned := []model.Badge{
		{Type: model.BadgeTypeSessions, Level: model.BadgeLevelBlue, TitleKey: "sessions.blue"},
		{Type: model.BadgeTypeSessions, Level: model.BadgeLevelRed, TitleKey: "sessions.red"},
		{Type: model.BadgeTypeSessions, Level: model.BadgeLevelGreen, TitleKey: "sessions.green"},
		{Type: model.BadgeTypeCloseWin, TitleKey: "close-win"},
	}

	assert.Equal(t, []string{"sessions.red", "close-win"}, keys(Highest(earned)))
	assert.Empty(t, Highest(nil))
}

func keys(badges []model.Badge) []string {
	out := make([]string, len(badges))
	for i, b := range badges {
		out[i] = b.TitleKey
	}
	return out
}
