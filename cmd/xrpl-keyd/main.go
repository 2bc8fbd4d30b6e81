package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"xrpl-crypto/go-core/internal/composition"
	"xrpl-crypto/go-core/internal/config"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	rpcAddr := flag.String("rpc-addr", "", "JSON-RPC listen address (overrides config, default "+config.DefaultRPCAddr+")")
	configPath := flag.String("config", "", "path to keytool.yaml (optional)")
	flag.Parse()
	if *showVersion {
		fmt.Printf("xrpl-keyd version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, *configPath, *rpcAddr); err != nil {
		fmt.Fprintf(os.Stderr, "xrpl-keyd failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, rpcAddr string) error {
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return err
	}
	if rpcAddr != "" {
		cfg.RPC.Addr = rpcAddr
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	d, err := composition.NewDaemon(cfg, os.Stderr)
	if err != nil {
		return err
	}
	d.Logger.Info("xrpl-keyd starting", "version", version, "algorithm", d.Service.Algorithm().String())
	if err := d.Run(ctx); err != nil {
		return err
	}
	d.Logger.Info("xrpl-keyd stopped")
	return nil
}
