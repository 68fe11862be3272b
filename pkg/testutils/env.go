// Package testutils gates integration tests on environment variables,
// read from the process or from the repository's .env file.
package testutils

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/joho/godotenv"
)

const ENV_POSTGRESQL_DSN = "BHARATLENS_TEST_POSTGRESQL_DSN"

var loadOnce sync.Once

// LoadEnv loads <repo root>/.env once. A missing file is not an error.
func LoadEnv() {
	loadOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		envPath := filepath.Join(filepath.Dir(filename), "..", "..", ".env")
		if _, err := os.Stat(envPath); err != nil {
			return
		}
		_ = godotenv.Load(envPath)
	})
}

// RequireEnv returns the value of key or skips the test when it is unset.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	LoadEnv()
	v := os.Getenv(key)
	if v == "" {
		t.Skipf("%s is not set", key)
	}
	return v
}
