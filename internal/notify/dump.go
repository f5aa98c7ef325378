package notify

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteBody writes a rendered body verbatim to path for inspection. An empty
// path is a no-op.
func WriteBody(path, body string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
