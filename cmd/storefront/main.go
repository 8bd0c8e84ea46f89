package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/adminapi"
	"github.com/talkincode/storefront/internal/app"
	"github.com/talkincode/storefront/internal/webserver"
	"go.uber.org/zap"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

var version = "develop"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version)
		os.Exit(0)
	}
	if *h {
		flag.Usage()
		os.Exit(0)
	}

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "init application: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database tables recreated")
		return
	}

	server := webserver.New(application)
	adminapi.Init(server)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zap.S().Infof("received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			zap.S().Errorf("web server stopped: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zap.S().Errorf("web server shutdown: %v", err)
	}
}
