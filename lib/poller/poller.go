// Package poller drives the live-score poll-and-dispatch cycle. Each run is
// a re-entrant batch job: load the store once, group subscriptions by
// (season, league) so every schedule is fetched at most once, poll live
// totals for active games, push on observed change, and commit the mutated
// working copy exactly once at the end.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/fiffu/ligawatch/lib/models"
	"github.com/fiffu/ligawatch/lib/store"
	"github.com/fiffu/ligawatch/senders"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Source is the narrow slice of the upstream provider the poller consumes.
type Source interface {
	Schedule(ctx context.Context, season, league string) ([]models.Game, error)
	LiveTotals(ctx context.Context, season, gameID string) (models.ScoreState, bool, error)
}

// Summary is the aggregate result of one run. Upstream fetch failures never
// surface here; they are logged and retried naturally next cycle.
type Summary struct {
	TotalSubscriptions int `json:"totalSubscriptions"`
	TotalActiveGames   int `json:"totalActiveGames"`
	Pushed             int `json:"pushed"`
}

type Poller struct {
	log     *zap.Logger
	store   *store.Store
	source  Source
	senders senders.Registry

	// Serializes runs within this process. Cross-process exclusion is an
	// operational invariant of the scheduler, not enforced here.
	mu sync.Mutex
}

func New(log *zap.Logger, st *store.Store, source Source, reg senders.Registry) *Poller {
	return &Poller{log: log, store: st, source: source, senders: reg}
}

type groupKey struct {
	Season string
	League string
}

// Run executes one poll-and-dispatch cycle at the given instant. Store
// backend errors are fatal for the run; everything else degrades to skipped
// groups or games.
func (p *Poller) Run(ctx context.Context, now time.Time) (Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	log := p.log.Sugar().With("run_id", uuid.NewString())
	started := time.Now().UTC()

	snapshot, err := p.store.Read(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{TotalSubscriptions: len(snapshot.Subscriptions)}
	if summary.TotalSubscriptions == 0 {
		return summary, nil
	}

	working := snapshot.Clone()

	groups := map[groupKey]models.Subscriptions{}
	for _, sub := range snapshot.Subscriptions {
		key := groupKey{Season: sub.Season, League: sub.League}
		groups[key] = append(groups[key], sub)
	}

	for key, subs := range groups {
		schedule, err := p.source.Schedule(ctx, key.Season, key.League)
		if err != nil {
			log.Warnw("schedule fetch failed, skipping group",
				"season", key.Season, "league", key.League, "err", err)
			continue
		}

		for i := range subs {
			sub := &subs[i]
			identity := sub.Identity()

			active := ActiveGames(sub, schedule, now)
			// Overwrite unconditionally so a closed match window reads
			// back as "no active games".
			working.ActiveGameIDs[identity] = gameIDs(active)
			summary.TotalActiveGames += len(active)

			for g := range active {
				game := &active[g]
				removed, pushed := p.pollGame(ctx, log, working, sub, game, now)
				summary.Pushed += pushed
				if removed {
					break
				}
			}
		}
	}

	if err := p.store.WriteAll(ctx, working); err != nil {
		return Summary{}, err
	}

	log.Infow("poll cycle completed",
		"subscriptions", summary.TotalSubscriptions,
		"active_games", summary.TotalActiveGames,
		"pushed", summary.Pushed,
		"elapsed_msecs", int(time.Now().UTC().Sub(started).Milliseconds()))
	return summary, nil
}

// pollGame observes one active game for one subscription and dispatches on
// change. Mutates only the working copy: the new state commits after a
// delivered push, and a permanently invalid endpoint unsubscribes in place.
func (p *Poller) pollGame(ctx context.Context, log *zap.SugaredLogger, working *models.Store, sub *models.Subscription, game *models.Game, now time.Time) (removed bool, pushed int) {
	observed, ok, err := p.source.LiveTotals(ctx, sub.Season, game.GameID)
	if err != nil {
		log.Warnw("live totals fetch failed, skipping game", "game_id", game.GameID, "err", err)
		return false, 0
	}
	if !ok {
		// No totals row yet: no observation this cycle, stored state
		// stays untouched.
		return false, 0
	}

	identity := sub.Identity()
	key := models.GameKey{Identity: identity, GameID: game.GameID}
	event, changed := DetectChange(sub, game, working.GameStates[key], observed, now)
	if !changed {
		return false, 0
	}

	outcome, err := p.senders["webpush"].Send(ctx, sub, event)
	switch outcome {
	case senders.Delivered:
		working.GameStates[key] = event.State
		return false, 1

	case senders.PermanentlyInvalid:
		log.Infow("endpoint permanently invalid, removing subscription",
			"team", sub.Team, "err", err)
		working.Remove(identity)
		return true, 0

	default:
		log.Warnw("push delivery failed, will retry next cycle",
			"game_id", game.GameID, "err", err)
		return false, 0
	}
}
