package models

// Store is the single persisted document: every subscription plus the derived
// state needed to detect the next score change. Everything else is recomputed
// each poll cycle.
type Store struct {
	Subscriptions Subscriptions         `json:"subscriptions"`
	GameStates    map[GameKey]string    `json:"gameStates"`
	ActiveGameIDs map[Identity][]string `json:"activeGameIds"`
}

func NewStore() *Store {
	return &Store{
		Subscriptions: Subscriptions{},
		GameStates:    map[GameKey]string{},
		ActiveGameIDs: map[Identity][]string{},
	}
}

// Clone returns a deep working copy. Poll runs mutate the clone only and
// persist it once at the end, so the durable document is never seen half
// written.
func (s *Store) Clone() *Store {
	out := &Store{
		Subscriptions: make(Subscriptions, len(s.Subscriptions)),
		GameStates:    make(map[GameKey]string, len(s.GameStates)),
		ActiveGameIDs: make(map[Identity][]string, len(s.ActiveGameIDs)),
	}
	copy(out.Subscriptions, s.Subscriptions)
	for k, v := range s.GameStates {
		out.GameStates[k] = v
	}
	for k, v := range s.ActiveGameIDs {
		ids := make([]string, len(v))
		copy(ids, v)
		out.ActiveGameIDs[k] = ids
	}
	return out
}

// Normalize backfills nil maps after decoding an older or empty document.
func (s *Store) Normalize() {
	if s.Subscriptions == nil {
		s.Subscriptions = Subscriptions{}
	}
	if s.GameStates == nil {
		s.GameStates = map[GameKey]string{}
	}
	if s.ActiveGameIDs == nil {
		s.ActiveGameIDs = map[Identity][]string{}
	}
}

// Find returns the subscription matching the identity, or nil.
func (s *Store) Find(id Identity) *Subscription {
	for i := range s.Subscriptions {
		if s.Subscriptions[i].Identity() == id {
			return &s.Subscriptions[i]
		}
	}
	return nil
}

// Remove deletes the subscription with the given identity together with its
// derived state. Reports whether a matching record existed.
func (s *Store) Remove(id Identity) bool {
	kept := s.Subscriptions[:0]
	removed := false
	for _, sub := range s.Subscriptions {
		if sub.Identity() == id {
			removed = true
			continue
		}
		kept = append(kept, sub)
	}
	s.Subscriptions = kept
	if removed {
		delete(s.ActiveGameIDs, id)
		for k := range s.GameStates {
			if k.Identity == id {
				delete(s.GameStates, k)
			}
		}
	}
	return removed
}

// Prune drops derived entries whose owning subscription no longer exists.
// Keeps the document from accumulating orphaned state.
func (s *Store) Prune() {
	alive := make(map[Identity]struct{}, len(s.Subscriptions))
	for i := range s.Subscriptions {
		alive[s.Subscriptions[i].Identity()] = struct{}{}
	}
	for id := range s.ActiveGameIDs {
		if _, ok := alive[id]; !ok {
			delete(s.ActiveGameIDs, id)
		}
	}
	for k := range s.GameStates {
		if _, ok := alive[k.Identity]; !ok {
			delete(s.GameStates, k)
		}
	}
}
