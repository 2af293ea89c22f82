// Package sqlitepath locates the SQLite database recorded streams are
// stored in.
package sqlitepath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/genai/pkg/dotdir"
)

// FileName is the database file created inside the genai directory.
const FileName = "genai.sqlite"

// ResolveSQLitePath returns the first existing database: override, then
// $GENAI_SQLITE, then the well known locations.
func ResolveSQLitePath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("GENAI_SQLITE")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.New("could not find genai SQLite database; pass --sqlite or record a chat with --record")
}

// DefaultSQLitePath returns the database path inside the resolved genai
// directory, creating the directory if needed.
func DefaultSQLitePath(configDir string) (string, error) {
	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

func sqliteCandidates() []string {
	candidates := []string{
		FileName,
		filepath.Join(".genai", FileName),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".genai", FileName))
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates, filepath.Join(xdgHome, "genai", FileName))
	}

	return candidates
}
