// Package presence tracks which users currently hold a live-channel
// session. The set lives in memory only and starts empty on boot.
package presence

import (
	"hash/fnv"
	"sync"
)

const shardCount = 32

// Tracker is a sharded online-set. Connection lifecycle events arrive
// from one goroutine per connection, so each shard carries its own
// lock; a lookup never waits on mutations of other shards.
type Tracker struct {
	shards [shardCount]shard
}

type shard struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewTracker() *Tracker {
	t := &Tracker{}
	for i := range t.shards {
		t.shards[i].ids = make(map[string]struct{})
	}
	return t
}

func (t *Tracker) shard(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &t.shards[h.Sum32()%shardCount]
}

func (t *Tracker) Connect(userID string) {
	s := t.shard(userID)
	s.mu.Lock()
	s.ids[userID] = struct{}{}
	s.mu.Unlock()
}

// Disconnect removes the user; removing an absent user is a no-op.
func (t *Tracker) Disconnect(userID string) {
	s := t.shard(userID)
	s.mu.Lock()
	delete(s.ids, userID)
	s.mu.Unlock()
}

func (t *Tracker) IsOnline(userID string) bool {
	s := t.shard(userID)
	s.mu.RLock()
	_, ok := s.ids[userID]
	s.mu.RUnlock()
	return ok
}

func (t *Tracker) OnlineUsers() []string {
	var out []string
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		for id := range s.ids {
			out = append(out, id)
		}
		s.mu.RUnlock()
	}
	return out
}

func (t *Tracker) OnlineCount() int {
	var n int
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		n += len(s.ids)
		s.mu.RUnlock()
	}
	return n
}
