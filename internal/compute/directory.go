package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"ycensure/internal/logging"
	"ycensure/internal/yccli"

	"go.uber.org/zap"
)

// ParseError means the yc list output was not valid JSON. There is no safe
// fallback interpretation, so callers treat it as fatal.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse yc list output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Directory answers existence questions about instances in a folder. It is
// purely a read: every query is a fresh yc invocation, nothing is cached.
type Directory struct {
	runner yccli.Runner
}

// NewDirectory creates a Directory on top of the given runner.
func NewDirectory(runner yccli.Runner) *Directory {
	return &Directory{runner: runner}
}

// List returns every instance in the folder.
func (d *Directory) List(ctx context.Context, folderID string) ([]Instance, error) {
	out, err := d.runner.Run(ctx, "compute", "instance", "list",
		"--folder-id", folderID, "--format", "json")
	if err != nil {
		return nil, fmt.Errorf("failed to list instances in folder %q: %w", folderID, err)
	}

	if len(bytes.TrimSpace(out)) == 0 {
		return nil, nil
	}

	var instances []Instance
	if err := json.Unmarshal(out, &instances); err != nil {
		return nil, &ParseError{Err: err}
	}

	logging.Logger().Debug("listed instances",
		zap.String("folder_id", folderID),
		zap.Int("count", len(instances)))

	return instances, nil
}

// FindByName scans the folder for an instance with the given name. Names are
// unique by YC convention; the first match wins. A nil result with a nil
// error means the instance does not exist.
func (d *Directory) FindByName(ctx context.Context, name, folderID string) (*Instance, error) {
	instances, err := d.List(ctx, folderID)
	if err != nil {
		return nil, err
	}
	for i := range instances {
		if instances[i].Name == name {
			return &instances[i], nil
		}
	}
	return nil, nil
}
