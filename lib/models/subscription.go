package models

import (
	"fmt"
	"strings"
	"time"
)

// Filter scopes a subscription to one team within a season and league.
type Filter struct {
	Season string `json:"season"`
	League string `json:"league"`
	Team   string `json:"team"`
}

// Subscription is a push registration for one (endpoint, season, league, team)
// tuple. Endpoint plus the two keys address the Web Push channel.
type Subscription struct {
	Season    string    `json:"season"`
	League    string    `json:"league"`
	Team      string    `json:"team"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Subscriptions []Subscription

func (s *Subscription) Filter() Filter {
	return Filter{Season: s.Season, League: s.League, Team: s.Team}
}

func (s *Subscription) Identity() Identity {
	return Identity{Endpoint: s.Endpoint, Season: s.Season, League: s.League, Team: s.Team}
}

// Identity is the composite key of a subscription. It is a value type used
// directly as a map key; the persisted document encodes it as
// "endpoint|season|league|team".
type Identity struct {
	Endpoint string
	Season   string
	League   string
	Team     string
}

func IdentityOf(f Filter, endpoint string) Identity {
	return Identity{Endpoint: endpoint, Season: f.Season, League: f.League, Team: f.Team}
}

func (id Identity) String() string {
	return strings.Join([]string{id.Endpoint, id.Season, id.League, id.Team}, "|")
}

func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(text []byte) error {
	// Endpoint URLs contain no "|", so the first three separators from the
	// right are unambiguous.
	parts := strings.Split(string(text), "|")
	if len(parts) < 4 {
		return fmt.Errorf("malformed identity key: %q", text)
	}
	n := len(parts)
	id.Endpoint = strings.Join(parts[:n-3], "|")
	id.Season = parts[n-3]
	id.League = parts[n-2]
	id.Team = parts[n-1]
	return nil
}

// GameKey scopes a last-seen score state to one game of one subscription.
type GameKey struct {
	Identity Identity
	GameID   string
}

func (k GameKey) String() string {
	return k.Identity.String() + "|" + k.GameID
}

func (k GameKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *GameKey) UnmarshalText(text []byte) error {
	s := string(text)
	cut := strings.LastIndex(s, "|")
	if cut < 0 {
		return fmt.Errorf("malformed game key: %q", text)
	}
	k.GameID = s[cut+1:]
	return k.Identity.UnmarshalText([]byte(s[:cut]))
}

// NormalizeTeam folds case and surrounding whitespace so subscription team
// names match schedule entries regardless of formatting upstream.
func NormalizeTeam(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
