package engine

import (
	"context"

	"github.com/dshills/chordboard/internal/slot"
)

// Repository is the persistence collaborator.
type Repository interface {
	// LoadSlots returns a profile's slots in ordinal order.
	LoadSlots(ctx context.Context, profileID int64) ([]slot.Slot, error)

	// SaveSlot stores one slot.
	SaveSlot(ctx context.Context, profileID int64, s slot.Slot) error

	// SaveSlots stores several slots at once.
	SaveSlots(ctx context.Context, profileID int64, slots []slot.Slot) error
}
