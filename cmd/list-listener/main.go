package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/config"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/listener"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	ruleset := rules.Default()
	if strings.TrimSpace(cfg.RulesPath) != "" {
		ruleset, err = rules.Load(cfg.RulesPath)
		must(err)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	svc := listener.NewService(db, cfg, ruleset, log)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
