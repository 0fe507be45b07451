package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/ChiriacCasian/eventorganizer/internal/invite"
	"github.com/ChiriacCasian/eventorganizer/internal/notify"
	"github.com/ChiriacCasian/eventorganizer/internal/server"
	"github.com/ChiriacCasian/eventorganizer/internal/service"
	"github.com/ChiriacCasian/eventorganizer/internal/storage/sqlite"
	"github.com/ChiriacCasian/eventorganizer/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/events.db")
	port := getEnv("PORT", "8080")

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	// Push bus: Redis when configured, in-process otherwise.
	var bus notify.Bus
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		bus, err = notify.NewRedisBus(addr, os.Getenv("REDIS_CHANNEL"))
		if err != nil {
			slog.Error("Failed to connect push bus", "error", err)
			os.Exit(1)
		}
		slog.Info("Push bus connected", "redis", addr)
	} else {
		bus = notify.NewMemoryBus()
	}
	defer bus.Close()

	registry := notify.NewRegistry()
	broadcaster := notify.NewBroadcaster(registry, bus)

	// SSE clients are fed from the bus, so that with Redis a mutation
	// committed on another instance reaches this instance's streams too.
	hub := notify.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := bus.StartForwarder(ctx, hub.Broadcast); err != nil {
		slog.Error("Failed to start push forwarder", "error", err)
		os.Exit(1)
	}

	events := service.NewEventService(store, invite.NewGenerator(), broadcaster)

	pollTimeout := server.DefaultPollTimeout
	if ms, err := strconv.Atoi(getEnv("POLL_TIMEOUT_MS", "")); err == nil && ms > 0 {
		pollTimeout = time.Duration(ms) * time.Millisecond
	}

	handler := server.NewEventHandler(events, registry, hub, pollTimeout)
	router := server.NewRouter(handler)

	// h2c lets clients multiplex long-poll and stream requests over one
	// cleartext HTTP/2 connection.
	h2cHandler := h2c.NewHandler(router, &http2.Server{})

	addr := fmt.Sprintf(":%s", port)
	slog.Info("Server starting", "address", addr, "poll_timeout", pollTimeout)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
