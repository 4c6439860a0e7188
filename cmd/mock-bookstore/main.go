package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/launchdarkly/api-contract-tests/bookstore"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
)

const shutdownTimeout = time.Second * 5

func main() {
	var addr string
	var debug bool

	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&addr, "addr", "127.0.0.1:7081", "address to listen on")
	fs.BoolVar(&debug, "debug", false, "log every request")
	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid parameters: %s\n", err)
		os.Exit(1)
	}

	loggers := ldlog.NewDefaultLoggers()
	loggers.SetBaseLogger(log.New(os.Stdout, "", log.LstdFlags))
	if debug {
		loggers.SetMinLevel(ldlog.Debug)
	}

	server, err := bookstore.Start(addr, bookstore.NewHandler(bookstore.DefaultBooks, loggers), loggers)
	if err != nil {
		loggers.Errorf("%s", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	loggers.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		loggers.Errorf("Shutdown failed: %s", err)
	}
}
