package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// rootMarkers identify a vault root, in order of preference.
var rootMarkers = []string{".learn", ".obsidian", ".git"}

// FindRoot walks upwards from startDir to the first directory holding a
// vault marker and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for dir := abs; ; {
		for _, marker := range rootMarkers {
			if hasFile(dir, marker) {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no vault root above %s", abs)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
