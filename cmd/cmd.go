// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// generateCommand submits a new generation from a text prompt
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate music from a text prompt",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "prompt",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "title",
				Usage: "Title for the generated tracks",
			},
			&cli.StringFlag{
				Name:  "tags",
				Usage: "Style tags (comma-separated)",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Generation model variant",
			},
			&cli.BoolFlag{
				Name:  "instrumental",
				Usage: "Generate without vocals",
			},
			&cli.BoolFlag{
				Name:  "no-poll",
				Usage: "Submit only; do not wait for completion",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Generate,
	}
}

// extendCommand continues an existing track
func extendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "extend",
		Usage: "Extend an existing track from a given point",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "prompt",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Track ID to extend",
				Required: true,
			},
			&cli.FloatFlag{
				Name:  "continue-at",
				Usage: "Timestamp in seconds to continue from",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Title for the extended tracks",
			},
			&cli.StringFlag{
				Name:  "tags",
				Usage: "Style tags (comma-separated)",
			},
			&cli.BoolFlag{
				Name:  "instrumental",
				Usage: "Generate without vocals",
			},
			&cli.BoolFlag{
				Name:  "no-poll",
				Usage: "Submit only; do not wait for completion",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Extend,
	}
}

// lyricsCommand generates standalone lyrics
func lyricsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lyrics",
		Usage: "Generate lyrics from a text prompt",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "prompt",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Lyrics,
	}
}

// cancelCommand notifies the remote service that a generation is abandoned
func cancelCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cancel",
		Usage: "Cancel a pending generation on the remote service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "Generation ID to cancel (defaults to the generation in flight)",
			},
		},
		Action: r.CancelGeneration,
	}
}

// libraryCommand handles the local track cache
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Browse and manage locally cached tracks",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached tracks, most recent first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to show",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Export listing to a file (csv or text)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path for --export",
					},
				},
				Action: r.LibraryList,
			},
			{
				Name:  "get",
				Usage: "Look up one track (cache first, then the remote service)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Track ID to look up",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the audio URL in the default browser",
					},
					&cli.BoolFlag{
						Name:  "download",
						Usage: "Download the track audio",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory for --download (default: current directory)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.LibraryGet,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached track",
				Action: r.LibraryClear,
			},
		},
	}
}

// setupCommand handles configuration and cache database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for interactive generation.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for music generation",
		Action:  r.TUI,
	}
}
