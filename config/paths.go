package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	TournamentsFile   = "tournaments.json"
	RegistrationsFile = "registrations.json"
	PlayersFile       = "players.json"
	PaymentStatusFile = "payment-status.json"
	UsersFile         = "users.json"
)

// DataFile resolves a file name inside the data directory.
func DataFile(name string) string {
	return filepath.Join(Env().DataDir, name)
}

// UsersFilePath resolves the user configuration document.
func UsersFilePath() string {
	return filepath.Join(Env().ConfigDir, UsersFile)
}

// EnsureDataFiles creates the data and config directories and seeds the
// JSON documents that must exist before the first request.
func EnsureDataFiles() error {
	cfg := Env()
	for _, dir := range []string{cfg.DataDir, cfg.ConfigDir, cfg.BackupDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	seeds := map[string]string{
		DataFile(TournamentsFile):   "[]",
		DataFile(RegistrationsFile): "[]",
		DataFile(PlayersFile):       "[]",
		DataFile(PaymentStatusFile): "{}",
		UsersFilePath():             "{}",
	}
	for path, content := range seeds {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to seed %s: %w", path, err)
		}
	}
	return nil
}
