// this module resolves where a broker instance keeps its on-disk state
package config

import (
	"os"
	"path/filepath"
)

// DataDir returns the directory a broker stores its partitions under.
// DATA_DIR overrides it; otherwise it defaults to the .partlog dotfile
// directory under the user's home directory.
func DataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(homeDir, ".partlog")
}
