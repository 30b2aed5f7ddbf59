package main

import (
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/tkahng/tactoe/gameserver"
	"github.com/tkahng/tactoe/internal/config"
	"github.com/tkahng/tactoe/proto"
	"github.com/tkahng/tactoe/transport"
)

func main() {
	config.Load()
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	brokerAddr := config.Getenv("TACTOE_GAMESERVER_BROKER_ADDR", "127.0.0.1:9090")
	bindAddr := config.Getenv("TACTOE_GAMESERVER_BIND_ADDR", "127.0.0.1:0")
	advertiseHost := config.Getenv("TACTOE_GAMESERVER_ADVERTISE_HOST", "127.0.0.1")

	listener, err := transport.Listen(bindAddr)
	if err != nil {
		logger.Fatal("failed to bind player listener", zap.Error(err))
	}

	control, err := transport.DialWithBackoff(brokerAddr, transport.DefaultDialBackoff)
	if err != nil {
		logger.Fatal("failed to reach broker", zap.Error(err))
	}

	_, portStr, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		logger.Fatal("unexpected listener address", zap.Error(err))
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		logger.Fatal("unexpected listener port", zap.Error(err))
	}

	handshake, err := proto.ToFrame(proto.Handshake{Type: proto.TypeHandshake, Host: advertiseHost, Port: port})
	if err != nil {
		logger.Fatal("failed to encode handshake", zap.Error(err))
	}
	if err := control.Send(handshake); err != nil {
		logger.Fatal("failed to send handshake", zap.Error(err))
	}

	srv := gameserver.NewServer(listener, control, logger)
	go srv.Run()

	logger.Info("game-server registered with broker",
		zap.String("broker_addr", brokerAddr),
		zap.String("advertise_addr", net.JoinHostPort(advertiseHost, portStr)),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down game-server")
	listener.Close()
	control.Close()
}
