package sportwinner

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fiffu/ligawatch/lib/models"
)

// GetSpielplan row layout.
const (
	planGameID = 1
	planDate   = 3
	planHome   = 4
	planAway   = 5
	planResult = 6
)

// Schedule fetches a league's Spielplan for one season. Rows without a game
// id are dropped; rows whose date cannot be parsed keep a zero StartsAt and
// are never treated as live.
func (c *Client) Schedule(ctx context.Context, season, league string) ([]models.Game, error) {
	rows, err := c.Command(ctx, "GetSpielplan", map[string]string{
		"id_saison": season,
		"id_liga":   league,
	})
	if err != nil {
		return nil, err
	}

	games := make([]models.Game, 0, len(rows))
	for _, row := range rows {
		id := row.Cell(planGameID)
		if id == "" {
			continue
		}
		raw := row.Cell(planDate)
		start, _ := ParseGameDate(raw)
		games = append(games, models.Game{
			GameID:   id,
			StartsAt: start,
			RawDate:  raw,
			Home:     row.Cell(planHome),
			Away:     row.Cell(planAway),
			Result:   row.Cell(planResult),
		})
	}
	return games, nil
}

var germanDate = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{2,4})(?:\s+(\d{1,2}):(\d{2}))?`)

// ParseGameDate parses the upstream "d.m.yy[yy] [hh:mm]" format. Two-digit
// years are 20xx. Falls back to RFC 3339 for the odd row that carries an ISO
// timestamp.
func ParseGameDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}

	if m := germanDate.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[1])
		hour, minute := 0, 0
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
			minute, _ = strconv.Atoi(m[5])
		}
		if month < 1 || month > 12 {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), true
	}

	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ParseCellNumber parses an upstream numeric cell. German comma decimals;
// "-" and "–" mark empty cells.
func ParseCellNumber(value string) (float64, bool) {
	raw := strings.TrimSpace(value)
	if raw == "" || raw == "-" || raw == "–" {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
