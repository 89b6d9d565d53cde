// Package memstore keeps topics and messages in process memory. It backs
// local runs and tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"topic-insights-go/internal/store"
	"topic-insights-go/internal/types"
)

type sessionMeta struct {
	clientID string
	lastSeen time.Time
}

type Store struct {
	mu       sync.RWMutex
	topics   map[string]types.TopicSet
	messages map[string][]types.Message
	sessions map[string]sessionMeta
	now      func() time.Time
}

func New() *Store {
	return &Store{
		topics:   map[string]types.TopicSet{},
		messages: map[string][]types.Message{},
		sessions: map[string]sessionMeta{},
		now:      time.Now,
	}
}

// ReplaceTopics swaps the whole snapshot for client#period.
func (s *Store) ReplaceTopics(_ context.Context, clientID string, period types.PeriodType, bounds types.PeriodBounds, topics []types.Topic) error {
	stored := make([]types.Topic, len(topics))
	for i, t := range topics {
		if t.TopicID == "" {
			t.TopicID = store.TopicID(t.Rank)
		}
		stored[i] = t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[period.Key(clientID)] = types.TopicSet{
		ClientID:    clientID,
		Period:      period,
		Bounds:      bounds,
		LastUpdated: s.now().UTC(),
		Topics:      stored,
	}
	return nil
}

func (s *Store) GetTopics(_ context.Context, clientID string, period types.PeriodType) (types.TopicSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.topics[period.Key(clientID)]
	if !ok {
		return types.TopicSet{}, store.ErrNotFound
	}
	set.Topics = append([]types.Topic(nil), set.Topics...)
	return set, nil
}

// SaveMessages appends messages to their sessions. A zero timestamp is set
// to the current time.
func (s *Store) SaveMessages(_ context.Context, clientID string, messages []types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range messages {
		if m.Timestamp.IsZero() {
			m.Timestamp = s.now().UTC()
		}
		s.messages[m.SessionID] = append(s.messages[m.SessionID], m)
		meta := s.sessions[m.SessionID]
		meta.clientID = clientID
		if m.Timestamp.After(meta.lastSeen) {
			meta.lastSeen = m.Timestamp
		}
		s.sessions[m.SessionID] = meta
	}
	return nil
}

// SessionIDs lists the client's sessions active since the given time, most
// recent first.
func (s *Store) SessionIDs(_ context.Context, clientID string, since time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, meta := range s.sessions {
		if meta.clientID == clientID && !meta.lastSeen.Before(since) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.sessions[ids[i]].lastSeen, s.sessions[ids[j]].lastSeen
		if a.Equal(b) {
			return ids[i] < ids[j]
		}
		return a.After(b)
	})
	return ids, nil
}

func (s *Store) SessionMessages(_ context.Context, sessionID string) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[sessionID]
	out := make([]types.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
