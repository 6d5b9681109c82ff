package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFile is the name of the optional CLI configuration file.
const ConfigFile = ".gazelib.yaml"

// ErrRootNotFound is returned when no dataset root exists above a directory.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a dataset root.
// Indicators are a .gazelib directory or a .gazelib.yaml file.
// It returns the absolute path of the first directory holding one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ".gazelib") || hasFile(dir, ConfigFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
