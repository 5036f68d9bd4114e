package harness

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiscoverScenarios lists scenario files directly under dir, sorted by
// name. Both .yaml and .yml extensions are picked up. A directory with no
// scenario files is an error, since a runner pointed at it would silently
// verify nothing.
func DiscoverScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("discover scenarios: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("discover scenarios: no scenario files under %s", dir)
	}
	return paths, nil
}
