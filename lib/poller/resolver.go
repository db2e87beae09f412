package poller

import (
	"time"

	"github.com/fiffu/ligawatch/lib/models"
)

// LiveWindow bounds how long a game counts as live after its scheduled
// start. Upstream publishes no end time; league matches never exceed this.
const LiveWindow = 4 * time.Hour

// ActiveGames returns the schedule games the subscription's team is playing
// right now: team name matches home or away (case and whitespace
// insensitive) and now falls within [start, start+LiveWindow], both ends
// inclusive. Games with unparseable dates fail closed.
func ActiveGames(sub *models.Subscription, schedule []models.Game, now time.Time) []models.Game {
	team := models.NormalizeTeam(sub.Team)

	var active []models.Game
	for _, game := range schedule {
		if models.NormalizeTeam(game.Home) != team && models.NormalizeTeam(game.Away) != team {
			continue
		}
		if !game.HasStart() {
			continue
		}
		end := game.StartsAt.Add(LiveWindow)
		if now.Before(game.StartsAt) || now.After(end) {
			continue
		}
		active = append(active, game)
	}
	return active
}

func gameIDs(games []models.Game) []string {
	ids := make([]string, len(games))
	for i := range games {
		ids[i] = games[i].GameID
	}
	return ids
}
