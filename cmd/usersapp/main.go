package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/AlibekovAA/usersapp/internal/common/bootstrap"
	"github.com/AlibekovAA/usersapp/internal/common/config"
	"github.com/AlibekovAA/usersapp/internal/common/constants"
	"github.com/AlibekovAA/usersapp/internal/common/logger"
	srv "github.com/AlibekovAA/usersapp/internal/common/server"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s %s\n", os.Args[0], strings.Join(config.ArgNames, " "))
		fmt.Fprintln(os.Stderr, "  static     static files dir")
		fmt.Fprintln(os.Stderr, "  templates  html templates dir")
		fmt.Fprintln(os.Stderr, "  host       TCP/IP hostname to serve on")
		fmt.Fprintln(os.Stderr, "  port       TCP/IP port to serve on")
		fmt.Fprintln(os.Stderr, "  dsn        postgres connection string")
	}
	flag.Parse()

	cfg, err := config.LoadAppConfig(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogDir, constants.ServiceName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	app, err := bootstrap.NewApp(context.Background(), cfg, log)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	serverCfg := srv.DefaultServerConfig(cfg.Addr())
	serverCfg.GracePeriod = cfg.ShutdownGracePeriod
	server := srv.NewServer(serverCfg, app.Handler())

	ln, err := srv.Listen(server)
	if err != nil {
		app.Pool.Close()
		log.Fatalf("%v", err)
	}

	if err := srv.StartWithGracefulShutdown(server, ln, log, serverCfg.GracePeriod, app.ShutdownHooks()); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	log.Infof("bye")
}
