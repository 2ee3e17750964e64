package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CypherAli/My-project/api"
	"github.com/CypherAli/My-project/bus"
	"github.com/CypherAli/My-project/cache"
	"github.com/CypherAli/My-project/config"
	"github.com/CypherAli/My-project/engine"
	"github.com/CypherAli/My-project/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.InitLogger("").WithField("error", err.Error()).Fatal("Failed to load config")
	}

	log := logging.InitLogger(cfg.Log.Level)

	redisCache, err := cache.NewRedisCache(&cache.RedisCacheConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: 10,
	})
	if err != nil {
		log.WithField("error", err.Error()).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	eng := engine.NewEngine()
	snapshots := cache.NewSnapshotPublisher(redisCache, time.Duration(cfg.Snapshot.TTLSeconds)*time.Second)
	trades := cache.NewTradesCache(redisCache, nil)
	publisher := bus.NewPublisher(redisCache, cfg.Bus.EventsChannel)

	consumer := bus.NewConsumer(redisCache, eng, publisher, trades, snapshots, bus.ConsumerConfig{
		CommandsChannel: cfg.Bus.CommandsChannel,
		SnapshotDepth:   cfg.Snapshot.Depth,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- consumer.Run(ctx)
	}()

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.NewRouter(redisCache, snapshots, trades),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.ListenAndServe()
	}()

	logging.LogServerStarted(cfg.HTTP.Addr, cfg.Bus.CommandsChannel)

	select {
	case <-ctx.Done():
		log.WithField("event", logging.EventServerStopped).Info("Shutdown signal received")
	case err := <-consumerDone:
		if err != nil {
			log.WithField("error", err.Error()).Error("Command consumer failed")
		}
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField("error", err.Error()).Error("HTTP server failed")
		}
	}

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err.Error()).Warn("HTTP server shutdown incomplete")
	}

	log.WithFields(logrus.Fields{
		"event": logging.EventServerStopped,
	}).Info("Matching engine stopped")

	os.Exit(0)
}
