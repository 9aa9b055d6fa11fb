package fswrite

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ycensure/internal/logging"

	"go.uber.org/zap"
)

// Result describes one idempotent write.
type Result struct {
	Path    string `json:"path"`
	Size    int    `json:"size"`
	Changed bool   `json:"changed"`
}

// Write ensures path contains exactly content (UTF-8). A file that already
// matches is left untouched and reported as unchanged. In check mode the
// decision is made but nothing is written. Parent directories are created
// on real writes.
func Write(path, content string, checkMode bool) (*Result, error) {
	res := &Result{Path: path, Size: len(content)}

	current, err := os.ReadFile(path)
	if err == nil && string(current) == content {
		return res, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	res.Changed = true
	if checkMode {
		return res, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory for %q: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %q: %w", path, err)
	}

	logging.Logger().Info("file written",
		zap.String("path", path),
		zap.Int("size", res.Size))

	return res, nil
}
