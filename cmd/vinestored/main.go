// Command vinestored runs the development stand-in object-store daemon on
// a Unix domain socket. It is not the production vineyard server.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"vinestore/internal/config"
	"vinestore/internal/devserver"
	"vinestore/internal/logging"
)

func main() {
	socketFlag := flag.String("socket", "", "Socket path to listen on (overrides config)")
	configFlag := flag.String("config", "", "Configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg, "vinestored.log")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	socket := cfg.IPC.SocketPath
	if strings.TrimSpace(*socketFlag) != "" {
		socket = *socketFlag
	}

	srv, err := devserver.NewServer(ctx, socket, devserver.Options{
		PersistDB:        cfg.Dev.PersistDB,
		AdvertiseVersion: cfg.Dev.AdvertiseVersion,
	}, logger)
	if err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}
	defer srv.Close()
	srv.Serve()

	logger.Info("vinestored ready",
		logging.String(logging.FieldSocket, socket),
		logging.String("instance_id", srv.InstanceID()))

	select {
	case <-ctx.Done():
		logger.Info("vinestored shutting down")
	case <-srv.Done():
		logger.Info("vinestored stopped by shutdown request")
	}
}
