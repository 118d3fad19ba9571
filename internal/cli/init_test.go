package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ASSISTENTE_TEST_KEY=from-file\nPORT_TEST=7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ASSISTENTE_TEST_KEY", "")
	os.Unsetenv("ASSISTENTE_TEST_KEY")
	t.Setenv("PORT_TEST", "8000")

	LoadEnvFile(path)

	if got := os.Getenv("ASSISTENTE_TEST_KEY"); got != "from-file" {
		t.Errorf("ASSISTENTE_TEST_KEY = %q, want from-file", got)
	}
	// godotenv.Load never overrides variables already set
	if got := os.Getenv("PORT_TEST"); got != "8000" {
		t.Errorf("PORT_TEST = %q, want 8000", got)
	}

	// a missing file is not an error
	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug", "test")
	if logger.Component() != "test" {
		t.Errorf("component = %q", logger.Component())
	}
}
