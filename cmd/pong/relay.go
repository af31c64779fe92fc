package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/multiplayer"
)

var (
	flagRelayAddr    string
	flagLobbyTimeout time.Duration
	flagOrigins      string
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run the online match relay",
	Long: `Start the HTTP relay that pairs online players.

The first player opens a lobby and receives a join code; the second
player joins with that code. The relay forwards messages between them
and records finished matches in the database.

Endpoints:
  /ws      - WebSocket; add ?code=CODE to join a lobby
  /health  - Lobby and room counters as JSON

Examples:
  pong relay
  pong relay --addr :9000 --lobby-timeout 5m
  pong relay --origins "example.com,*.example.com"`,
	Args: cobra.NoArgs,
	Run:  runRelay,
}

func init() {
	relayCmd.Flags().StringVar(&flagRelayAddr, "addr", ":8080", "HTTP listen address (host:port)")
	relayCmd.Flags().DurationVar(&flagLobbyTimeout, "lobby-timeout", 2*time.Minute, "How long a lobby waits for an opponent")
	relayCmd.Flags().StringVar(&flagOrigins, "origins", "", "Comma-separated WebSocket origin patterns")
}

func runRelay(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	logger, closeLog := newLogger("pong-relay", os.Stderr)
	defer closeLog()

	coordCfg := multiplayer.DefaultCoordinatorConfig()
	coordCfg.LobbyTimeout = flagLobbyTimeout
	coordCfg.MaxScore = cfg.Gameplay.MaxScore
	coord := multiplayer.NewCoordinator(coordCfg, logger)

	if store := openStore(); store != nil {
		defer store.Close()
		coord.SetResultSaver(store)
	}
	coord.Start()
	defer coord.Stop()

	var origins []string
	if flagOrigins != "" {
		origins = strings.Split(flagOrigins, ",")
	}

	server := &http.Server{
		Addr:              flagRelayAddr,
		Handler:           multiplayer.NewServer(coord, logger, origins...).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown failed", "err", err)
		}
	}()

	logger.Info("relay listening", "address", flagRelayAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("relay stopped", "completed_rooms", coord.Stats().CompletedRooms)
}
