package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultDotEnvPath is read from the working directory at startup.
const DefaultDotEnvPath = ".env"

// LoadDotEnv exports the variables of a .env file into the process
// environment so HANDLECHECK_* keys set there reach viper. Variables already
// present in the environment are left alone. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultDotEnvPath
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}
