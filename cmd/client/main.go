package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ERPAdmin/internal/cli/commands"
	"ERPAdmin/internal/config"
	"ERPAdmin/internal/logger"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Load unified config (env + flags)
	cfg := config.NewConfig()

	if cfg.Version {
		printVersion()
		return
	}

	sugar, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = sugar.Sync() }()
	commands.Logger = sugar

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// dispatcher
	exitCode := commands.Dispatch(ctx, cfg, flag.Args())
	cancel()
	if exitCode == 0 {
		return
	}
	_ = sugar.Sync()
	os.Exit(exitCode)
}

func printVersion() {
	fmt.Printf("ERPAdmin console\nVersion: %s\nBuild date: %s\n", version, buildDate)
}
