package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/shule/api"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/services/notify"
	"github.com/trezcool/shule/storage/sessionfile"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "SHULE : ", log.LstdFlags|log.Lmicroseconds)

	conf, err := core.LoadConfig()
	if err != nil {
		std.Fatal(err)
	}

	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	storage, err := sessionfile.New(conf.StateDir)
	if err != nil {
		std.Fatal(err)
	}

	client := api.NewClient(conf, storage, logger)
	store := session.NewStore(storage, client, notifysvc.NewConsoleNotifier(os.Stderr), logger)

	// derive the session from storage; the "who am I" verification settles in the
	// background while the requested screen renders optimistically
	store.Init(context.Background())

	cli := &commandLine{
		store:  store,
		client: client,
		logger: logger,
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
