package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvailla/ytradar/internal/shared"
	"github.com/urfave/cli/v3"
)

func TestNewRunner(t *testing.T) {
	t.Run("with all dependencies provided", func(t *testing.T) {
		config := shared.DefaultConfig()
		logger := shared.NewLogger(nil)
		output := &bytes.Buffer{}

		runner := NewRunner(RunnerOpts{
			Config: config,
			Logger: logger,
			Output: output,
		})

		if runner.config != config {
			t.Error("expected config to be set")
		}
		if runner.logger != logger {
			t.Error("expected logger to be set")
		}
		if runner.output != output {
			t.Error("expected output to be set")
		}
	})

	t.Run("with defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		if runner.config == nil || runner.logger == nil || runner.output == nil {
			t.Error("expected defaults to be applied")
		}
		if runner.config.API.BatchSize != 50 {
			t.Errorf("expected default batch size, got %d", runner.config.API.BatchSize)
		}
	})
}

func TestRegister(t *testing.T) {
	runner := NewRunner(RunnerOpts{})
	commands := runner.register()

	want := map[string]bool{
		"run": false, "retry": false, "balance": false, "cleanup": false,
		"stats": false, "sort-db": false, "setup": false,
	}
	for _, command := range commands {
		if _, ok := want[command.Name]; !ok {
			t.Errorf("unexpected command %s", command.Name)
			continue
		}
		want[command.Name] = true
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %s not registered", name)
		}
	}
}

func TestClientRequiresToken(t *testing.T) {
	t.Setenv(tokenEnv, "")

	runner := NewRunner(RunnerOpts{})
	if _, err := runner.client(); !errors.Is(err, shared.ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}

func TestSetupDatabase(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	dataDir := filepath.Join(dir, "data")
	historyPath := filepath.Join(dataDir, "history.db")

	content := "[data]\ndir = \"" + dataDir + "\"\nhistory_path = \"" + historyPath + "\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	runner := NewRunner(RunnerOpts{})
	app := &cli.Command{Commands: runner.register()}

	if err := app.Run(context.Background(), []string{"ytradar", "setup", "--config", configPath}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := os.Stat(historyPath); err != nil {
		t.Errorf("expected history database created: %v", err)
	}
	if _, err := os.Stat(dataDir); err != nil {
		t.Errorf("expected data directory created: %v", err)
	}

	t.Run("creates a config file when missing", func(t *testing.T) {
		t.Chdir(t.TempDir())

		if err := app.Run(context.Background(), []string{"ytradar", "setup"}); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if _, err := os.Stat("config.toml"); err != nil {
			t.Errorf("expected config file created: %v", err)
		}
		if _, err := os.Stat(filepath.Join("data", "history.db")); err != nil {
			t.Errorf("expected history database created: %v", err)
		}
	})
}
