package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/calebds/ledgertag/internal/common"
	"github.com/calebds/ledgertag/internal/config"
	"github.com/calebds/ledgertag/internal/engine"
	"github.com/calebds/ledgertag/internal/storage"
)

// databasePath resolves the database location from config, flag, or default.
func databasePath() (string, error) {
	if path := viper.GetString("database.path"); path != "" {
		return config.ExpandPath(path), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "ledgertag", "ledgertag.db"), nil
}

// initEngine opens storage, runs migrations and seeds, and returns the
// engine. The caller owns closing the returned storage.
func initEngine(ctx context.Context) (*engine.Engine, *storage.SQLiteStorage, error) {
	path, err := databasePath()
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, nil, common.NewUserError(fmt.Sprintf("could not open database at %s", path), err)
	}

	eng := engine.New(store)
	if err := eng.Bootstrap(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	return eng, store, nil
}
