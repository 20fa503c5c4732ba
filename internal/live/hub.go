// Package live re-evaluates read queries whenever a table they read from changes.
package live

import "sync"

// Table names a store table that queries read from and writes invalidate.
type Table string

const (
	Users    Table = "users"
	Posts    Table = "posts"
	Comments Table = "comments"
	Likes    Table = "likes"
)

// AllTables lists every table, for changes whose extent is unknown.
var AllTables = []Table{Users, Posts, Comments, Likes}

// Hub is a thread-safe registry of subscribers keyed by table.
type Hub struct {
	mu     sync.RWMutex
	tables map[Table]map[*subscriber]struct{}
}

// subscriber holds at most one pending invalidation; further ones are conflated.
type subscriber struct {
	signal chan struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{tables: make(map[Table]map[*subscriber]struct{})}
}

// Notify marks every subscriber reading any of tables as stale.
func (h *Hub) Notify(tables ...Table) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*subscriber]struct{})
	for _, t := range tables {
		for sub := range h.tables[t] {
			if _, ok := seen[sub]; ok {
				continue
			}
			seen[sub] = struct{}{}
			select {
			case sub.signal <- struct{}{}:
			default:
			}
		}
	}
}

// Subscribers reports how many subscriptions currently read table.
func (h *Hub) Subscribers(table Table) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tables[table])
}

func (h *Hub) subscribe(tables []Table) (*subscriber, func()) {
	sub := &subscriber{signal: make(chan struct{}, 1)}

	h.mu.Lock()
	for _, t := range tables {
		subs, ok := h.tables[t]
		if !ok {
			subs = make(map[*subscriber]struct{})
			h.tables[t] = subs
		}
		subs[sub] = struct{}{}
	}
	h.mu.Unlock()

	var once sync.Once
	return sub, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, t := range tables {
				delete(h.tables[t], sub)
				if len(h.tables[t]) == 0 {
					delete(h.tables, t)
				}
			}
		})
	}
}
