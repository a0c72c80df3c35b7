// Package storage persists engine settings and an analysis journal in
// BadgerDB.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "megalodon"

// baseDir returns the per-user application data root for the platform:
// ~/Library/Application Support on macOS, %APPDATA% on Windows, and
// $XDG_DATA_HOME or ~/.local/share elsewhere.
func baseDir() (string, error) {
	env, fallback := "XDG_DATA_HOME", []string{".local", "share"}
	switch runtime.GOOS {
	case "darwin":
		env, fallback = "", []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	}
	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// GetDataDir returns the megalodon data directory, creating it if needed.
func GetDataDir() (string, error) {
	base, err := baseDir()
	if err != nil {
		return "", err
	}
	dataDir := filepath.Join(base, appName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// GetDatabaseDir returns the directory for storing the BadgerDB database.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}

	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	return dbDir, nil
}

// DefaultBookPath is where the opening book is looked for when no path is
// configured. The file need not exist.
func DefaultBookPath() string {
	dataDir, err := GetDataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dataDir, "book.txt")
}
