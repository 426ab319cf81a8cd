// Package snapshot holds the most recently completed fleet snapshot.
//
// The cache has a single writer (the fleet scheduler) and any number of
// readers (API handlers, the websocket hub). Readers never block and never
// observe a partially built snapshot: a snapshot is swapped in whole.
package snapshot

import (
	"sync/atomic"

	"evalgo.org/fleetstatus/models"
)

// Cache stores the latest published FleetSnapshot.
type Cache struct {
	current atomic.Pointer[models.FleetSnapshot]
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{}
}

// Publish replaces the current snapshot. The caller must not modify s
// afterwards.
func (c *Cache) Publish(s models.FleetSnapshot) {
	if s.Records == nil {
		s.Records = []models.HostStatusRecord{}
	}
	c.current.Store(&s)
}

// Read returns the current snapshot, or an empty one before the first
// publish.
func (c *Cache) Read() models.FleetSnapshot {
	s := c.current.Load()
	if s == nil {
		return models.EmptySnapshot()
	}
	return *s
}

// Records returns the records of the current snapshot.
func (c *Cache) Records() []models.HostStatusRecord {
	return c.Read().Records
}
