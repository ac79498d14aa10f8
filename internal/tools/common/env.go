package common

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads KEY=VALUE pairs into the environment. Variables that are
// already set win, and a missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}
