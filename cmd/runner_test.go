package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/store"
	tu "github.com/desertthunder/reelx/internal/testing"
)

func newTestRunner(t *testing.T, catalog *tu.MockCatalog) (*Runner, *bytes.Buffer, afero.Fs) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Catalog.SuggestDelayMS = 10
	output := &bytes.Buffer{}
	fs := afero.NewMemMapFs()

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: catalog,
		Store:   store.NewMemory(0),
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
		Fs:      fs,
	})
	t.Cleanup(func() { runner.Close() })
	return runner, output, fs
}

// run executes args against a fresh command tree bound to r.
func run(r *Runner, args ...string) error {
	app := &cli.Command{Name: "reelx", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"reelx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			catalog := &tu.MockCatalog{}
			api := &services.APIService{}
			s := store.NewMemory(0)
			fs := afero.NewMemMapFs()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Catalog:    catalog,
				API:        api,
				Store:      s,
				Fs:         fs,
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
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.Catalog() != catalog {
				t.Error("expected catalog to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.store != s {
				t.Error("expected store to be set")
			}
			if runner.fs != fs {
				t.Error("expected fs to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.api == nil {
				t.Error("expected api service built from config")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("catalog built lazily from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})

			if runner.catalog != nil {
				t.Fatal("expected catalog to be nil before first use")
			}
			if _, ok := runner.Catalog().(*services.CatalogService); !ok {
				t.Errorf("expected *services.CatalogService, got %T", runner.Catalog())
			}
			if got := runner.imageURL("upload/a.jpg"); got != "https://phimimg.com/upload/a.jpg" {
				t.Errorf("expected resolved image URL, got %q", got)
			}
		})
	})

	t.Run("Engine", func(t *testing.T) {
		t.Run("reuses the engine", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, &tu.MockCatalog{})

			first, err := runner.Engine()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			second, _ := runner.Engine()
			if first != second {
				t.Error("expected the same engine on repeated calls")
			}
		})

		t.Run("opens the configured store", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Storage.Driver = "memory"
			runner := NewRunner(RunnerOpts{Config: config, Catalog: &tu.MockCatalog{}, Logger: shared.NewLogger(io.Discard)})

			if _, err := runner.Engine(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !runner.ownsStore {
				t.Error("expected runner to own the store it opened")
			}
			if err := runner.Close(); err != nil {
				t.Errorf("expected clean close, got %v", err)
			}
			if runner.store != nil || runner.engine != nil {
				t.Error("expected store and engine to be released")
			}
		})

		t.Run("fails on unknown driver", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Storage.Driver = "redis"
			runner := NewRunner(RunnerOpts{Config: config, Catalog: &tu.MockCatalog{}, Logger: shared.NewLogger(io.Discard)})

			if _, err := runner.Engine(); err == nil {
				t.Fatal("expected error for unknown storage driver")
			}
		})

		t.Run("Close leaves injected store open", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, &tu.MockCatalog{})
			injected := runner.store

			if err := runner.Close(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.store != injected {
				t.Error("expected injected store to be kept")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writeCards", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writeCards(nil)
		if !strings.Contains(output.String(), "(no titles)") {
			t.Errorf("expected empty marker, got %q", output.String())
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "home", "browse", "search", "suggest", "detail", "watch", "favorites", "history", "export", "api", "serve", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})
}

func TestRequireArg(t *testing.T) {
	parse := func(args ...string) (string, error) {
		var got string
		var gotErr error
		app := &cli.Command{
			Name:      "x",
			Arguments: []cli.Argument{&cli.StringArg{Name: "slug"}},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				got, gotErr = requireArg(cmd, "slug")
				return nil
			},
		}
		if err := app.Run(context.Background(), append([]string{"x"}, args...)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		return got, gotErr
	}

	t.Run("present", func(t *testing.T) {
		got, err := parse(" tay-du-ky ")
		if err != nil || got != "tay-du-ky" {
			t.Errorf("expected trimmed slug, got %q (%v)", got, err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := parse()
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected missing argument error, got %v", err)
		}
	})
}

func TestTaxonNames(t *testing.T) {
	got := taxonNames([]models.Taxon{{Name: "Hành Động"}, {Name: "Hài Hước"}})
	if got != "Hành Động, Hài Hước" {
		t.Errorf("unexpected joined names %q", got)
	}
	if taxonNames(nil) != "" {
		t.Error("expected empty string for no taxa")
	}
}
