// Package secrets reads credentials from a directory of plain-text files.
// The filename is the key and the trimmed contents are the value.
//
// Known keys: ai-gateway-api-key, database-url, smtp-password.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const DefaultDir = ".secrets"

// Load returns a map of filename to trimmed contents. A missing directory
// yields an empty map. Hidden files, subdirectories and empty files are skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading secret %s: %w", entry.Name(), err)
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			out[entry.Name()] = value
		}
	}

	return out, nil
}
