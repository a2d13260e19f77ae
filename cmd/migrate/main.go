// Command migrate copies the rooms file store into MySQL, one room per worker.
package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_rooms/internal/adapters/observability"
	"hotel_rooms/internal/domain"
	"hotel_rooms/internal/shared"
	"hotel_rooms/internal/storage/jsonfile"
	mysqlrepo "hotel_rooms/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("file", cfg.RoomsFile).
		Int("workers", cfg.Workers).
		Msg("migrate starting")

	rooms, err := jsonfile.New(cfg.RoomsFile).Load(ctx)
	if errors.Is(err, domain.ErrStoreEmpty) {
		log.Warn().Str("file", cfg.RoomsFile).Msg("nothing to migrate")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("read rooms file failed")
	}

	db, err := mysqlrepo.Open(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql open failed")
	}
	defer db.Close()
	repo := mysqlrepo.New(db)
	if err := repo.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var failed atomic.Int32

	for room := range rooms.Values() {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(r *domain.Room) {
			defer wg.Done()
			defer sem.Release(1)

			if err := repo.UpsertRoom(ctx, r); err != nil {
				failed.Add(1)
				log.Warn().Int("room", r.Number).Err(err).Msg("migrate failed")
				return
			}
			log.Debug().Int("room", r.Number).Int("bookings", r.Bookings().Len()).Msg("migrate ok")
		}(room)
	}

	wg.Wait()
	if n := failed.Load(); n > 0 {
		log.Error().Int32("failed", n).Int("rooms", rooms.Len()).Msg("migration incomplete")
		_ = db.Close()
		os.Exit(1)
	}
	log.Info().Int("rooms", rooms.Len()).Msg("migration completed")
}
