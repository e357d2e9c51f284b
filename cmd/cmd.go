// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// outputFlags returns the --json/--pretty pair shared by read commands, followed by extra.
func outputFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}, extra...)
}

func exportFlags(defaultOutput string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Export format: json, csv, markdown, txt",
			Value:   "json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output path",
			Value:   defaultOutput,
		},
	}
}

// setupCommand initializes local state
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the local store",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml populated with defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Create the SQLite store and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// homeCommand prints the home page sections
func homeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "home",
		Usage:  "Show new releases, recommendations, series and single movies",
		Flags:  outputFlags(),
		Action: r.Home,
	}
}

// browseCommand lists one category page
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "List a category: phim-le, phim-bo, hoat-hinh, tv-shows",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "category"},
		},
		Flags: outputFlags(
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page number",
				Value: 1,
			},
		),
		Action: r.Browse,
	}
}

// searchCommand runs a full keyword search
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the catalog by keyword",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "keyword"},
		},
		Flags: outputFlags(
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results (default: catalog.search_limit)",
			},
		),
		Action: r.Search,
	}
}

// suggestCommand runs the debounced search-box lookup once
func suggestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "Show search-box suggestions for a query",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags:  outputFlags(),
		Action: r.Suggest,
	}
}

// detailCommand shows one title
func detailCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "detail",
		Aliases: []string{"phim"},
		Usage:   "Show title details and episodes",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "slug"},
		},
		Flags:  outputFlags(),
		Action: r.Detail,
	}
}

// watchCommand opens an episode and records history
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"xem"},
		Usage:   "Open an episode (first by default) and record it in history",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "slug"},
			&cli.StringArg{Name: "episode"},
		},
		Flags: outputFlags(
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the embedded player in the browser",
			},
			&cli.BoolFlag{
				Name:  "next",
				Usage: "Advance to the episode after the selected one",
			},
		),
		Action: r.Watch,
	}
}

// favoritesCommand manages saved titles
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite titles",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List favorites, newest first",
				Flags: outputFlags(
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q", "filter"},
						Usage:   "Filter by name, ignoring accents",
					},
				),
				Action: r.FavoritesList,
			},
			{
				Name:  "toggle",
				Usage: "Add or remove a title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "slug"},
				},
				Flags:  outputFlags(),
				Action: r.FavoritesToggle,
			},
			{
				Name:  "has",
				Usage: "Report whether a title is a favorite",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "slug"},
				},
				Flags:  outputFlags(),
				Action: r.FavoritesHas,
			},
			{
				Name:   "export",
				Usage:  "Write favorites to a file",
				Flags:  exportFlags(""),
				Action: r.FavoritesExport,
			},
		},
	}
}

// historyCommand manages watch history
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "Manage watch history",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List watched titles, most recent first",
				Flags:  outputFlags(),
				Action: r.HistoryList,
			},
			{
				Name:  "remove",
				Usage: "Remove one title from history",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "slug"},
				},
				Action: r.HistoryRemove,
			},
			{
				Name:   "clear",
				Usage:  "Remove all history",
				Action: r.HistoryClear,
			},
			{
				Name:   "export",
				Usage:  "Write history to a file",
				Flags:  exportFlags(""),
				Action: r.HistoryExport,
			},
		},
	}
}

// exportCommand writes the whole library
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export favorites and history, optionally with posters",
		Flags: append(exportFlags(""),
			&cli.BoolFlag{
				Name:  "posters",
				Usage: "Download favorite posters",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent poster downloads",
				Value: 5,
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "Poster requests per second",
				Value: 5,
			},
		),
		Action: r.Export,
	}
}

// apiCommand handles direct catalog API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the catalog API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the catalog API, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// serveCommand runs the local JSON API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the local JSON API with live library events",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default: server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalog browser",
		Action:  r.TUI,
	}
}
