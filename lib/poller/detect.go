package poller

import (
	"fmt"
	"time"

	"github.com/fiffu/ligawatch/lib/models"
)

// DetectChange compares the stored state against a fresh observation and
// builds the notification event when they differ. Pure: callers commit the
// new state only after a successful dispatch, so a failed send is retried on
// the next cycle. prev is "" when this game was never observed before.
func DetectChange(sub *models.Subscription, game *models.Game, prev string, observed models.ScoreState, now time.Time) (*models.Event, bool) {
	state := observed.String()
	if prev == state {
		return nil, false
	}

	kind := models.EventScoreChanged
	if prev == "" {
		kind = models.EventGameStarted
	}
	return &models.Event{
		Kind:      kind,
		GameID:    game.GameID,
		State:     state,
		Title:     fmt.Sprintf("%s: Live-Update", sub.Team),
		Body:      buildLiveBody(game.Home, game.Away, observed),
		URL:       models.DeepLink(sub.Filter()),
		Timestamp: now,
	}, true
}

// buildLiveBody renders "<home> vs <away>: <state> (<leader>, Diff <n>)".
// Equal totals render as Gleichstand, never as either side leading.
func buildLiveBody(home, away string, state models.ScoreState) string {
	leader := "Gleichstand"
	switch {
	case state.Left > state.Right:
		leader = home + " fuehrt"
	case state.Right > state.Left:
		leader = away + " fuehrt"
	}
	return fmt.Sprintf("%s vs %s: %s (%s, Diff %d)", home, away, state, leader, state.Diff())
}
