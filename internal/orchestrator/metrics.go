package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeMetricsFile writes m to path atomically, the same temp-then-rename
// pattern the checkpoint store uses.
func writeMetricsFile(path string, m Metrics) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("metrics: mkdir: %w", err)
		}
	}
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("metrics: marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("metrics: write temp: %w", err)
	}
	return os.Rename(tmp, path)
}
