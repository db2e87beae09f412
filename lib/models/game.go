package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Game is one scheduled match as reported by the upstream Spielplan. Games
// are read-only here; the poller only observes them.
type Game struct {
	GameID   string
	StartsAt time.Time // zero when RawDate could not be parsed
	RawDate  string
	Home     string
	Away     string
	Result   string
}

// HasStart reports whether the scheduled start time was parseable. Games
// without one are never considered live.
func (g *Game) HasStart() bool {
	return !g.StartsAt.IsZero()
}

// ScoreState is the normalized "<left>:<right>" running total of a game.
type ScoreState struct {
	Left  int
	Right int
}

func (s ScoreState) String() string {
	return fmt.Sprintf("%d:%d", s.Left, s.Right)
}

func (s ScoreState) Diff() int {
	d := s.Left - s.Right
	if d < 0 {
		return -d
	}
	return d
}

// ParseScoreState parses a stored "<left>:<right>" string. The empty string
// is not a valid state; absence of an observation is modelled separately.
func ParseScoreState(raw string) (ScoreState, error) {
	left, right, found := strings.Cut(raw, ":")
	if !found {
		return ScoreState{}, fmt.Errorf("malformed score state: %q", raw)
	}
	l, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return ScoreState{}, fmt.Errorf("malformed score state: %q", raw)
	}
	r, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return ScoreState{}, fmt.Errorf("malformed score state: %q", raw)
	}
	return ScoreState{Left: l, Right: r}, nil
}
