// Package dirs resolves the per-user directories vodbench reads and writes.
package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "vodbench"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// layout describes where one kind of directory lives on each platform.
type layout struct {
	xdgEnv      string   // Linux override, e.g. XDG_CACHE_HOME
	linuxHome   []string // Linux fallback under $HOME
	darwinHome  []string // macOS path under $HOME, app name appended
	darwinExtra string   // Suffix after the app name on macOS, if any
	fallback    func() (string, error)
}

func (l layout) resolve() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p := filepath.Join(append(append([]string{home}, l.darwinHome...), appName)...)
		if l.darwinExtra != "" {
			p = filepath.Join(p, l.darwinExtra)
		}
		return p, nil
	case "linux":
		if xdg := os.Getenv(l.xdgEnv); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(append(append([]string{home}, l.linuxHome...), appName)...), nil
	default:
		return l.fallback()
	}
}

func underUserDir(userDir func() (string, error), extra ...string) func() (string, error) {
	return func() (string, error) {
		d, err := userDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(append([]string{d, appName}, extra...)...), nil
	}
}

// ConfigDir returns the app's configuration directory.
// - Linux: $XDG_CONFIG_HOME/vodbench or ~/.config/vodbench
// - macOS: ~/Library/Application Support/vodbench
// - Windows: %AppData%/vodbench
func ConfigDir() (string, error) {
	return layout{
		xdgEnv:     "XDG_CONFIG_HOME",
		linuxHome:  []string{".config"},
		darwinHome: []string{"Library", "Application Support"},
		fallback:   underUserDir(os.UserConfigDir),
	}.resolve()
}

// DataDir returns the app's data directory, home of default reports.
// - Linux: $XDG_DATA_HOME/vodbench or ~/.local/share/vodbench
// - macOS: ~/Library/Application Support/vodbench
func DataDir() (string, error) {
	return layout{
		xdgEnv:     "XDG_DATA_HOME",
		linuxHome:  []string{".local", "share"},
		darwinHome: []string{"Library", "Application Support"},
		fallback:   underUserDir(os.UserConfigDir),
	}.resolve()
}

// CacheDir returns the app's cache directory.
// - Linux: $XDG_CACHE_HOME/vodbench or ~/.cache/vodbench
// - macOS: ~/Library/Caches/vodbench
// - Windows: %LocalAppData%/vodbench
func CacheDir() (string, error) {
	return layout{
		xdgEnv:     "XDG_CACHE_HOME",
		linuxHome:  []string{".cache"},
		darwinHome: []string{"Library", "Caches"},
		fallback:   underUserDir(os.UserCacheDir),
	}.resolve()
}

// StateDir returns the app's state directory, where TUI-mode logs go.
// - Linux: $XDG_STATE_HOME/vodbench or ~/.local/state/vodbench
// - macOS: ~/Library/Application Support/vodbench/state
// - Windows: %LocalAppData%/vodbench/state
func StateDir() (string, error) {
	return layout{
		xdgEnv:      "XDG_STATE_HOME",
		linuxHome:   []string{".local", "state"},
		darwinHome:  []string{"Library", "Application Support"},
		darwinExtra: "state",
		fallback:    underUserDir(os.UserCacheDir, "state"),
	}.resolve()
}

// SceneCacheDir holds persisted segmentations.
func SceneCacheDir() (string, error) {
	c, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(c, "scenes"), nil
}

// DefaultOutputDir returns the default report directory under the data dir.
func DefaultOutputDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "reports"), nil
}

// TempBaseDir returns the base directory for scratch workspaces under cache.
func TempBaseDir() (string, error) {
	c, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(c, "work"), nil
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureAll ensures config, data, cache, and state dirs exist.
func EnsureAll() error {
	for _, f := range []func() (string, error){ConfigDir, DataDir, CacheDir, StateDir} {
		p, err := f()
		if err != nil {
			continue
		}
		if err := Ensure(p); err != nil {
			return err
		}
	}
	return nil
}
