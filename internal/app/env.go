package app

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read by bundlegen.
const (
	EnvMode      = "BUNDLEGEN_MODE"
	EnvDevServer = "BUNDLEGEN_DEV_SERVER"
)

// DefineNames are the variables exposed to bundled code as process.env.NAME.
var DefineNames = []string{"NODE_ENV", "DEBUG"}

// LoadEnv loads workDir/.env into the process environment. Variables already
// set win over the file, and a missing file is not an error.
func LoadEnv(workDir string) error {
	path := filepath.Join(workDir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
