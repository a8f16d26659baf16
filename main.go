/*
Runs the testbed on the headless renderer backend. The frame loop, the
render target resolution and the batching all run for real; the backend
only records what it would have submitted to the GPU.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/oncue/engine"
	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/renderer/headless"
	"github.com/spaghettifunk/oncue/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to the TOML configuration")
	watch := flag.Bool("watch", false, "reload the configuration when the file changes")
	flag.Parse()

	tb := testbed.NewTestGame(&engine.ApplicationConfig{
		ConfigPath:  *configPath,
		WatchConfig: *watch,
	})

	e, err := engine.New(tb.Game, headless.New())
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := e.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}

	// cancel the run loop on sigterm and friends, shutdown happens below
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if runErr != nil {
		core.LogError(runErr.Error())
		os.Exit(1)
	}
}
