package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tkahng/tactoe/broker"
	"github.com/tkahng/tactoe/internal/adminfeed"
	"github.com/tkahng/tactoe/internal/config"
)

func main() {
	config.Load()
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	gameServerAddr := config.Getenv("TACTOE_BROKER_GAMESERVER_ADDR", "0.0.0.0:9090")
	playerAddr := config.Getenv("TACTOE_BROKER_PLAYER_ADDR", "0.0.0.0:8989")
	adminAddr := config.Getenv("TACTOE_BROKER_ADMIN_ADDR", "0.0.0.0:8000")

	b, err := broker.New(gameServerAddr, playerAddr, logger)
	if err != nil {
		logger.Fatal("failed to start broker", zap.Error(err))
	}

	admin := adminfeed.New(b.Repo, b.ConnectedPlayers)
	httpServer := &http.Server{Addr: adminAddr, Handler: admin.Handler()}

	go func() {
		logger.Info("admin feed listening", zap.String("addr", adminAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin feed stopped", zap.Error(err))
		}
	}()

	go b.Run()
	logger.Info("broker listening",
		zap.String("game_server_addr", gameServerAddr),
		zap.String("player_addr", playerAddr),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down broker")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	b.Close()
}
