package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pointake/internal/config"
	"pointake/internal/listener"
	"pointake/internal/refstore"
	"pointake/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	store := refstore.NewStore()
	svc := listener.NewService(db, cfg, store)
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
