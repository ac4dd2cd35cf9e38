package config

import (
	"os"
	"path/filepath"
)

const (
	storageDriverVar = "LEDGRIO_STORAGE_DRIVER"
	sessionFileVar   = "LEDGRIO_SESSION_FILE"
	sqlitePathVar    = "LEDGRIO_SQLITE_PATH"
	sealKeyVar       = "LEDGRIO_SEAL_KEY"
)

// StorageConfig describes where the durable session lives between runs.
type StorageConfig interface {
	GetStorageDriver() string
	GetSessionFile() string
	GetSQLitePath() string
	GetSealKey() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetStorageDriver selects the durable storage backend: "file", "sqlite" or "memory".
func (Storage) GetStorageDriver() string {
	return GetEnv(storageDriverVar, "file")
}

func (Storage) GetSessionFile() string {
	return GetEnv(sessionFileVar, filepath.Join(dataDir(), "session.json"))
}

func (Storage) GetSQLitePath() string {
	return GetEnv(sqlitePathVar, filepath.Join(dataDir(), "ledgrio.db"))
}

// GetSealKey returns the passphrase used to seal the persisted session.
// An empty key persists the session unsealed.
func (Storage) GetSealKey() string {
	return GetEnv(sealKeyVar, "")
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".ledgrio")
}
