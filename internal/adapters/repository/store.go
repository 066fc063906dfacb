// Package repository defines the snapshot store interface and its Mongo
// and in-memory implementations.
package repository

import (
	"context"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
)

// Store is the read path into the external data store. The analytics core
// treats it as a stateless query interface: one call per collection per
// report request, no transactional requirements. Every method returns a
// point-in-time copy the caller may treat as immutable.
type Store interface {
	// Roster returns all players across teams.
	Roster(ctx context.Context) ([]model.Player, error)

	// Sessions returns the team's session records. An empty team returns
	// every session.
	Sessions(ctx context.Context, team string) ([]model.Session, error)

	// Entries returns all RPE registrations, unvalidated. Normalization
	// and classification happen downstream; the store never drops records.
	Entries(ctx context.Context) ([]model.RawEntry, error)
}
