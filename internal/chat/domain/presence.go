package domain

import (
	"sync"
	"time"
)

// PresenceEntry records a user's current connection metadata.
type PresenceEntry struct {
	SocketID string    `json:"socketId"`
	UserID   string    `json:"userId"`
	LastSeen time.Time `json:"lastSeen"`
}

// PresenceBroadcaster receives the full presence snapshot whenever the
// registry changes. The default implementation fans it out to every
// connected client; swapping it changes the fan-out strategy without
// touching the registry.
type PresenceBroadcaster interface {
	PresenceChanged(entries []PresenceEntry)
}

// PresenceRegistry maps user ids to their live connection metadata. It is
// created at server start and disposed at shutdown; a mutex guards it
// because handlers outside the hub goroutine also read snapshots.
//
// A user has at most one entry: a second connection from the same user
// overwrites the first (last-writer-wins, not multi-device fan-out).
type PresenceRegistry struct {
	mu      sync.Mutex
	entries map[string]PresenceEntry
	order   []string
}

// NewPresenceRegistry creates an empty registry.
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		entries: make(map[string]PresenceEntry),
	}
}

// RecordConnect inserts or overwrites the entry for userID.
func (r *PresenceRegistry) RecordConnect(userID, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[userID]; !exists {
		r.order = append(r.order, userID)
	}
	r.entries[userID] = PresenceEntry{
		SocketID: connectionID,
		UserID:   userID,
		LastSeen: time.Now(),
	}
}

// RecordDisconnect removes the entry whose connection id matches and
// reports whether anything was removed. A stale connection id, already
// overwritten by a newer connect from the same user, is a no-op: the
// newer entry stays.
func (r *PresenceRegistry) RecordDisconnect(connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, entry := range r.entries {
		if entry.SocketID == connectionID {
			delete(r.entries, userID)
			for i, id := range r.order {
				if id == userID {
					r.order = append(r.order[:i], r.order[i+1:]...)
					break
				}
			}
			return true
		}
	}
	return false
}

// Touch refreshes the last-seen timestamp for userID, if present.
func (r *PresenceRegistry) Touch(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[userID]; ok {
		entry.LastSeen = time.Now()
		r.entries[userID] = entry
	}
}

// Snapshot returns all current entries in insertion order. The order is
// an implementation detail, not a contract.
func (r *PresenceRegistry) Snapshot() []PresenceEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]PresenceEntry, 0, len(r.entries))
	for _, userID := range r.order {
		entries = append(entries, r.entries[userID])
	}
	return entries
}

// Len returns the number of live entries.
func (r *PresenceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Dispose clears the registry at shutdown.
func (r *PresenceRegistry) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]PresenceEntry)
	r.order = nil
}
