package poller

import (
	"testing"
	"time"

	"github.com/fiffu/ligawatch/lib/models"
	"github.com/stretchr/testify/assert"
)

var windowStart = time.Date(2025, time.September, 14, 10, 0, 0, 0, time.UTC)

func scheduledGame(id, home, away string, start time.Time) models.Game {
	return models.Game{GameID: id, Home: home, Away: away, StartsAt: start}
}

func subFor(team string) *models.Subscription {
	return &models.Subscription{Season: "11", League: "L1", Team: team, Endpoint: "https://e"}
}

func TestActiveWindowBoundaries(t *testing.T) {
	sub := subFor("FC Example")
	schedule := []models.Game{scheduledGame("1", "FC Example", "FC Other", windowStart)}

	tests := []struct {
		name   string
		now    time.Time
		active bool
	}{
		{"at start", windowStart, true},
		{"mid game", windowStart.Add(2 * time.Hour), true},
		{"at window end", windowStart.Add(LiveWindow), true},
		{"one second before start", windowStart.Add(-time.Second), false},
		{"one second past window", windowStart.Add(LiveWindow + time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActiveGames(sub, schedule, tt.now)
			if tt.active {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestTeamMatchingIsCaseAndWhitespaceInsensitive(t *testing.T) {
	sub := subFor("fc Example")
	schedule := []models.Game{
		scheduledGame("1", "FC EXAMPLE", "FC Other", windowStart),
		scheduledGame("2", "FC Third", " FC Example ", windowStart),
		scheduledGame("3", "FC Third", "FC Other", windowStart),
	}

	got := ActiveGames(sub, schedule, windowStart)
	assert.Equal(t, []string{"1", "2"}, gameIDs(got))
}

func TestUnparseableDateFailsClosed(t *testing.T) {
	sub := subFor("FC Example")
	schedule := []models.Game{
		{GameID: "1", Home: "FC Example", Away: "FC Other", RawDate: "kein Termin"},
	}

	assert.Empty(t, ActiveGames(sub, schedule, windowStart))
}
