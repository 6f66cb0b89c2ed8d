// Package storage persists user preferences, game statistics, finished games
// and learned opening moves in a badger database.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "nerdchess"

// DataDirEnv overrides the data directory when set.
const DataDirEnv = "NERDCHESS_DATA_DIR"

// baseDir picks the per-user data root for goos:
//   - macOS: ~/Library/Application Support
//   - Windows: %APPDATA%, else ~/AppData/Roaming
//   - elsewhere: $XDG_DATA_HOME, else ~/.local/share
func baseDir(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	var env string
	var fallback []string
	switch goos {
	case "darwin":
		fallback = []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	default:
		env, fallback = "XDG_DATA_HOME", []string{".local", "share"}
	}
	if env != "" {
		if dir := getenv(env); dir != "" {
			return dir, nil
		}
	}
	h, err := home()
	if err != nil {
		return "", err
	}
	if h == "" {
		return "", errors.New("no home directory")
	}
	return filepath.Join(append([]string{h}, fallback...)...), nil
}

// dataDir resolves the application directory without creating it.
func dataDir(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	if dir := getenv(DataDirEnv); dir != "" {
		return dir, nil
	}
	base, err := baseDir(goos, getenv, home)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// GetDataDir returns the application data directory, creating it if needed.
func GetDataDir() (string, error) {
	dir, err := dataDir(runtime.GOOS, os.Getenv, os.UserHomeDir)
	if err != nil {
		return "", err
	}
	return dir, os.MkdirAll(dir, 0o755)
}

// GetDatabaseDir returns the badger directory inside the data directory.
func GetDatabaseDir() (string, error) {
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	dbDir := filepath.Join(dir, "db")
	return dbDir, os.MkdirAll(dbDir, 0o755)
}
