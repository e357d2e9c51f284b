package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/favorites"
	"github.com/desertthunder/reelx/internal/history"
	"github.com/desertthunder/reelx/internal/search"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/store"
	"github.com/desertthunder/reelx/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.Catalog
	images     services.ImageResolver
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	fs         afero.Fs

	mu        sync.Mutex
	store     store.Store
	ownsStore bool
	engine    *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.Catalog // built from Config.Catalog on first use when nil
	API        *services.APIService
	Store      store.Store // opened from Config.Storage on first use when nil
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Fs         afero.Fs // export target, defaults to the OS filesystem
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.Catalog.BaseURL, opts.HTTPClient)
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		fs:         opts.Fs,
		store:      opts.Store,
	}
	return r
}

// SetLogger replaces the logger used by commands created after the call.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Catalog returns the remote catalog client.
func (r *Runner) Catalog() services.Catalog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.catalogLocked()
}

func (r *Runner) catalogLocked() services.Catalog {
	if r.catalog == nil {
		r.catalog = services.NewCatalogService(services.CatalogOptionsFromConfig(r.config.Catalog, r.logger))
	}
	if r.images == nil {
		if resolver, ok := r.catalog.(services.ImageResolver); ok {
			r.images = resolver
		}
	}
	return r.catalog
}

// Engine returns the task engine, opening the local store on first use.
func (r *Runner) Engine() (*tasks.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine != nil {
		return r.engine, nil
	}

	if r.store == nil {
		s, err := store.Open(r.config.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		r.store = s
		r.ownsStore = true
	}

	favs := favorites.New(r.store, favorites.WithLogger(shared.WithLogger(r.logger, "component", "favorites")))
	hist := history.New(r.store, history.WithLogger(shared.WithLogger(r.logger, "component", "history")))
	r.engine = tasks.NewEngine(r.catalogLocked(), favs, hist, r.config.Catalog.SearchLimit)
	return r.engine, nil
}

// Suggester builds a debounced search helper from the catalog settings.
func (r *Runner) Suggester() *search.Suggester {
	return search.New(r.Catalog(), search.Options{
		Delay:     r.config.Catalog.SuggestDelay(),
		MinLength: r.config.Catalog.MinQueryLength,
		Limit:     r.config.Catalog.SuggestLimit,
		Logger:    shared.WithLogger(r.logger, "component", "search"),
	})
}

// Close releases the local store when the runner opened it.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil || !r.ownsStore {
		return nil
	}
	err := store.Close(r.store)
	r.store = nil
	r.engine = nil
	return err
}

func (r *Runner) imageURL(path string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.catalogLocked(); r.images == nil {
		return path
	}
	return r.images.ImageURL(path)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// writeCards prints annotated catalog items one per line.
func (r *Runner) writeCards(cards []tasks.Card) {
	if len(cards) == 0 {
		r.writePlain("  (no titles)\n")
		return
	}
	for i, c := range cards {
		marker := ""
		if c.Favorite {
			marker = " ♥"
		}
		if c.Watched {
			marker += fmt.Sprintf(" [watched %s]", c.LastEp)
		}
		r.writePlain("%2d. %s [%s]%s\n    %s\n", i+1, c.Label(), c.Badge, marker, c.Slug)
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, homeCommand, browseCommand, searchCommand, suggestCommand, detailCommand, watchCommand,
		favoritesCommand, historyCommand, exportCommand, apiCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}
