package service

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"torneio/app_error"
	"torneio/config"
)

const backupPrefix = "backup_"
const maxBackups = 10

// BackupService copies the data documents and the user configuration into
// dated directories and restores them from there. Plain file copies, no
// coordination with in-flight requests.
type BackupService struct {
	backupDir string
	dataDir   string
	usersFile string
}

func NewBackupService() *BackupService {
	cfg := config.Env()
	return NewBackupServiceAt(cfg.BackupDir, cfg.DataDir, config.UsersFilePath())
}

func NewBackupServiceAt(backupDir, dataDir, usersFile string) *BackupService {
	return &BackupService{
		backupDir: backupDir,
		dataDir:   dataDir,
		usersFile: usersFile,
	}
}

func (s *BackupService) dataFiles() []string {
	return []string{
		config.TournamentsFile,
		config.RegistrationsFile,
		config.PlayersFile,
		config.PaymentStatusFile,
	}
}

// Create writes a new backup directory and prunes everything beyond the 10
// most recent ones. Returns the backup name.
func (s *BackupService) Create() (string, error) {
	timestamp := strings.NewReplacer(":", "-", ".", "-").Replace(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	name := backupPrefix + timestamp
	target := filepath.Join(s.backupDir, name)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", app_error.Internal(err)
	}
	for _, file := range s.dataFiles() {
		if err := copyIfExists(filepath.Join(s.dataDir, file), filepath.Join(target, file)); err != nil {
			return "", app_error.Internal(err)
		}
	}
	if err := copyIfExists(s.usersFile, filepath.Join(target, config.UsersFile)); err != nil {
		return "", app_error.Internal(err)
	}
	s.pruneOldBackups()
	return name, nil
}

// List returns the available backup names, most recent first.
func (s *BackupService) List() ([]string, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, app_error.Internal(err)
	}
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), backupPrefix) {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Restore copies a named backup's files back over the live documents.
func (s *BackupService) Restore(name string) error {
	if name == "" {
		return app_error.Validation("backup name is required")
	}
	// Reject anything that could escape the backup directory.
	if name != filepath.Base(name) || !strings.HasPrefix(name, backupPrefix) {
		return app_error.Validation("invalid backup name")
	}
	source := filepath.Join(s.backupDir, name)
	if _, err := os.Stat(source); err != nil {
		return app_error.NotFound("backup not found")
	}
	for _, file := range s.dataFiles() {
		if err := copyIfExists(filepath.Join(source, file), filepath.Join(s.dataDir, file)); err != nil {
			return app_error.Internal(err)
		}
	}
	if err := copyIfExists(filepath.Join(source, config.UsersFile), s.usersFile); err != nil {
		return app_error.Internal(err)
	}
	return nil
}

func (s *BackupService) pruneOldBackups() {
	names, err := s.List()
	if err != nil {
		log.Printf("failed to list backups for pruning: %v", err)
		return
	}
	for _, name := range names[min(maxBackups, len(names)):] {
		if err := os.RemoveAll(filepath.Join(s.backupDir, name)); err != nil {
			log.Printf("failed to remove old backup %s: %v", name, err)
		}
	}
}

func copyIfExists(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer in.Close()
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", source, err)
	}
	return nil
}
