package templates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/boardgametracker/internal/model"
)

func TestSettingsFrom(t *testing.T) {
	assert.Equal(t, model.DefaultSettings(), SettingsFrom(context.Background()))

	s := model.Settings{DateFormat: "YYYY-MM-DD", TimeFormat: "HH:mm", Currency: "GBP", Language: "en-GB"}
	assert.Equal(t, s, SettingsFrom(WithSettings(context.Background(), s)))
}
