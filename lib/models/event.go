package models

import (
	"fmt"
	"net/url"
	"time"
)

type EventKind string

const (
	EventGameStarted  EventKind = "game_started"
	EventScoreChanged EventKind = "score_changed"
)

// Event is one notification payload, produced when a game's observed score
// state differs from the stored one. The JSON shape is what the service
// worker on the client consumes.
type Event struct {
	Kind      EventKind `json:"type"`
	GameID    string    `json:"gameId"`
	State     string    `json:"state"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}

// DeepLink builds the in-app URL a notification opens.
func DeepLink(f Filter) string {
	return fmt.Sprintf("/tournaments?season=%s&league=%s&team=%s",
		url.QueryEscape(f.Season), url.QueryEscape(f.League), url.QueryEscape(f.Team))
}
