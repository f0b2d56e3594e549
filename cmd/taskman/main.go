package main

import (
	"fmt"
	"os"

	"taskman/internal/config"
	"taskman/internal/reminder"
	"taskman/internal/storage"
	"taskman/internal/task"
	"taskman/internal/ui"
)

func main() {
	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	svc := task.NewService()

	var store *storage.Store
	if cfg.DBPath != "" {
		store, err = storage.Open(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		tasks, err := store.LoadAll()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load tasks: %v\n", err)
			os.Exit(1)
		}
		svc.Seed(tasks)
	}

	if err := ui.Run(svc, store, reminder.NewEvaluator(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error running program: %v\n", err)
		os.Exit(1)
	}
}
