package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// FileNames are the config file names Find looks for, in priority order.
var FileNames = []string{"overload.toml", "overload.yaml", "overload.yml"}

// Find searches dir in fsys for a config file. Names are matched
// case-insensitively so that "Overload.TOML" is found as well.
//
// Returns:
//   - string: The path of the file within fsys
//   - error: fs.ErrNotExist (wrapped) if no config file is present
func Find(fsys fs.FS, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	found := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if _, dup := found[lower]; !dup {
			found[lower] = entry.Name()
		}
	}

	for _, name := range FileNames {
		if actual, ok := found[name]; ok {
			return path.Join(dir, actual), nil
		}
	}
	return "", fmt.Errorf("no config file in %s: %w", dir, fs.ErrNotExist)
}

// Discover finds and loads the config file in dir, falling back to Default
// when there is none. Environment overrides are applied last.
func Discover(fsys fs.FS, dir string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	name, err := Find(fsys, dir)
	switch {
	case err == nil:
		if cfg, err = LoadFS(fsys, name); err != nil {
			return nil, err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}
