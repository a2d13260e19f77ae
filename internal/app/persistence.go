package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"hotel_rooms/internal/adapters/observability"
	"hotel_rooms/internal/domain"
	"hotel_rooms/internal/seq"
)

// LoadRooms reads the room collection from store. An absent or empty store is
// seeded with the default inventory, which is written back immediately. A store
// that cannot be read yields the default inventory without touching the store.
func LoadRooms(ctx context.Context, store domain.RoomStore) *seq.List[*domain.Room] {
	rooms, err := store.Load(ctx)
	switch {
	case err == nil:
		observability.ObservePersistence("load", "ok")
		log.Info().Int("rooms", rooms.Len()).Msg("rooms loaded")
		return rooms

	case errors.Is(err, domain.ErrStoreEmpty):
		observability.ObservePersistence("load", "seeded")
		rooms = domain.DefaultInventory()
		log.Info().Int("rooms", rooms.Len()).Msg("store empty, seeding default inventory")
		_ = SaveRooms(ctx, store, rooms)
		return rooms

	default:
		observability.ObservePersistence("load", "fallback")
		log.Warn().Err(err).Msg("rooms store unreadable, using default inventory in memory")
		return domain.DefaultInventory()
	}
}

// SaveRooms writes the whole collection. Failures are logged and returned for
// the caller to decide on; nothing is rolled back.
func SaveRooms(ctx context.Context, store domain.RoomStore, rooms *seq.List[*domain.Room]) error {
	if err := store.Save(ctx, rooms); err != nil {
		observability.ObservePersistence("save", "error")
		log.Error().Err(err).Int("rooms", rooms.Len()).Msg("rooms save failed")
		if !errors.Is(err, domain.ErrPersistenceWrite) {
			err = errors.Join(domain.ErrPersistenceWrite, err)
		}
		return err
	}
	observability.ObservePersistence("save", "ok")
	return nil
}
