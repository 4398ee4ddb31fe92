// Command ripd runs one RIP-style distance-vector router process,
// reading its router id, listening ports and neighbor links from a
// config file named on the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackyisme123/RIP-v2/config"
	"github.com/jackyisme123/RIP-v2/riplog"
	"github.com/jackyisme123/RIP-v2/router"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("ripd", pflag.ContinueOnError)
	verbose := flags.BoolP("verbose", "v", false, "log at debug level")
	help := flags.BoolP("help", "h", false, "show usage")
	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *help {
		fmt.Fprintln(os.Stderr, "usage: ripd [-v] <config-file>")
		flags.PrintDefaults()
		return 0
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ripd [-v] <config-file>")
		return 2
	}

	cfg, err := config.Load(flags.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		return 1
	}

	log := riplog.New(cfg.RouterID, *verbose)
	rtr := router.New(cfg, router.WithLogger(log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received shutdown signal")
		cancel()
	}()

	log.WithField("ports", cfg.InputPorts).Info("starting router")
	if err := rtr.Run(ctx); err != nil {
		log.WithError(err).Error("router exited with error")
		return 1
	}
	return 0
}
