package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	amqpad "hotel_rooms/internal/adapters/amqp"
	server "hotel_rooms/internal/adapters/http_server"
	"hotel_rooms/internal/adapters/observability"
	redisad "hotel_rooms/internal/adapters/redis"
	"hotel_rooms/internal/app"
	"hotel_rooms/internal/domain"
	"hotel_rooms/internal/shared"
	"hotel_rooms/internal/storage/jsonfile"
	mysqlrepo "hotel_rooms/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	observability.Serve(cfg.MetricsAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, cfg)
	rooms := app.LoadRooms(ctx, store)
	log.Info().Int("rooms", rooms.Len()).Str("store", cfg.Store).Msg("inventory loaded")

	var opts []app.Option
	if cfg.RedisAddr != "" {
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cache.Close()
		if err := cache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, search cache disabled")
		} else {
			opts = append(opts, app.WithCache(cache, cfg.CacheTTL))
		}
	}
	if cfg.AMQPURL != "" {
		pub := amqpad.NewPublisher(cfg.AMQPURL)
		defer pub.Close()
		opts = append(opts, app.WithEvents(pub))
	}
	inv := app.NewInventory(rooms, store, opts...)

	// http
	srv := server.New(server.Options{Timeout: cfg.RequestTimeout, RPS: cfg.RateLimitRPS})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	sessions := app.NewSessionsTTL(inv, cfg.SessionTTL)
	go sessions.Run(ctx, time.Minute)
	srv.MountHandlers(&server.Handlers{Inv: inv, Sessions: sessions})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	if err := app.SaveRooms(context.Background(), store, inv.Snapshot()); err != nil {
		log.Error().Err(err).Msg("final save failed")
	}
	log.Info().Msg("API stopped")
}

func openStore(ctx context.Context, cfg shared.Config) domain.RoomStore {
	if cfg.Store != shared.StoreMySQL {
		log.Info().Str("path", cfg.RoomsFile).Msg("using file store")
		return jsonfile.New(cfg.RoomsFile)
	}
	db, err := mysqlrepo.Open(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db)
}
