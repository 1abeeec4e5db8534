package conf

import (
	"fmt"
	"os"
	"path/filepath"
)

// dirs lists every directory a run writes into.
func (c *Config) dirs() []string {
	return []string{c.Paths.Output, c.VisualDir(), c.OriginalDir()}
}

// SetupDirs creates the output directory tree.
func (c *Config) SetupDirs() error {
	for _, dir := range c.dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// CleanDirs removes files left in the output tree by a previous run.
// Subdirectories and the label directory are left alone.
func (c *Config) CleanDirs() error {
	for _, dir := range c.dirs() {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return fmt.Errorf("failed to remove stale file: %w", err)
			}
		}
	}
	return nil
}
