package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureSub(endpoint, team string) Subscription {
	return Subscription{
		Season:   "11",
		League:   "L1",
		Team:     team,
		Endpoint: endpoint,
		P256dh:   "p",
		Auth:     "a",
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := NewStore()
	sub := fixtureSub("https://e1", "FC Example")
	doc.Subscriptions = append(doc.Subscriptions, sub)
	id := sub.Identity()
	doc.ActiveGameIDs[id] = []string{"1"}
	doc.GameStates[GameKey{Identity: id, GameID: "1"}] = "0:0"

	clone := doc.Clone()
	clone.Subscriptions[0].Team = "Other"
	clone.ActiveGameIDs[id][0] = "2"
	clone.GameStates[GameKey{Identity: id, GameID: "1"}] = "3:1"

	assert.Equal(t, "FC Example", doc.Subscriptions[0].Team)
	assert.Equal(t, []string{"1"}, doc.ActiveGameIDs[id])
	assert.Equal(t, "0:0", doc.GameStates[GameKey{Identity: id, GameID: "1"}])
}

func TestRemovePurgesDerivedState(t *testing.T) {
	doc := NewStore()
	gone := fixtureSub("https://e1", "FC Example")
	kept := fixtureSub("https://e2", "FC Example")
	doc.Subscriptions = Subscriptions{gone, kept}

	goneID, keptID := gone.Identity(), kept.Identity()
	doc.ActiveGameIDs[goneID] = []string{"1"}
	doc.ActiveGameIDs[keptID] = []string{"1"}
	doc.GameStates[GameKey{Identity: goneID, GameID: "1"}] = "0:0"
	doc.GameStates[GameKey{Identity: keptID, GameID: "1"}] = "0:0"

	require.True(t, doc.Remove(goneID))

	assert.Len(t, doc.Subscriptions, 1)
	assert.Nil(t, doc.Find(goneID))
	assert.NotContains(t, doc.ActiveGameIDs, goneID)
	assert.NotContains(t, doc.GameStates, GameKey{Identity: goneID, GameID: "1"})
	assert.Contains(t, doc.ActiveGameIDs, keptID)
	assert.Contains(t, doc.GameStates, GameKey{Identity: keptID, GameID: "1"})
}

func TestRemoveMissingReturnsFalse(t *testing.T) {
	doc := NewStore()
	assert.False(t, doc.Remove(Identity{Endpoint: "https://nope"}))
}

func TestPruneDropsOrphans(t *testing.T) {
	doc := NewStore()
	alive := fixtureSub("https://e1", "FC Example")
	doc.Subscriptions = Subscriptions{alive}

	orphan := Identity{Endpoint: "https://gone", Season: "11", League: "L1", Team: "X"}
	doc.ActiveGameIDs[orphan] = []string{"9"}
	doc.GameStates[GameKey{Identity: orphan, GameID: "9"}] = "5:5"
	doc.ActiveGameIDs[alive.Identity()] = []string{"1"}

	doc.Prune()

	assert.NotContains(t, doc.ActiveGameIDs, orphan)
	assert.NotContains(t, doc.GameStates, GameKey{Identity: orphan, GameID: "9"})
	assert.Contains(t, doc.ActiveGameIDs, alive.Identity())
}
