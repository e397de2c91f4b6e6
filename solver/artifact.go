package solver

import (
	"fmt"
	"os"
)

// writeReport persists the page report for the generator step. The file is
// synced before returning so a crash mid-run still leaves a readable
// artifact for debugging.
func writeReport(path, content string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("solver: create report file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("solver: write report file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("solver: sync report file: %w", err)
	}
	return nil
}
