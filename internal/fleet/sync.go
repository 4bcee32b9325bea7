package fleet

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/Depot/internal/store"
)

// Sync replaces the stored fleet with the records from src.
func Sync(ctx context.Context, s store.Store, src Source) (int, error) {
	trains, err := src.Fleet(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch fleet: %w", err)
	}
	if err := store.ValidateFleet(trains); err != nil {
		return 0, fmt.Errorf("validate fleet: %w", err)
	}
	if err := s.ReplaceFleet(ctx, trains); err != nil {
		return 0, fmt.Errorf("store fleet: %w", err)
	}
	return len(trains), nil
}

// SeedIfEmpty syncs from src only when the store holds no trains. It
// returns the number of trains written.
func SeedIfEmpty(ctx context.Context, s store.Store, src Source) (int, error) {
	existing, err := s.ListTrains(ctx, store.TrainFilter{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("check fleet: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	return Sync(ctx, s, src)
}
