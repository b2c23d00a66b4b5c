// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// app is the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "top5",
		Usage:   "Build a Spotify playlist from the top tracks of a list of artists",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log warnings and errors, hide progress",
			},
		},
		Before:   r.setVerbosity,
		Commands: r.register(),
	}
}

// buildCommand creates or refreshes a playlist
func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Create or refill a playlist with the top tracks of every artist in a file",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Text file with one artist name per line",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "playlist",
				Aliases:  []string{"p"},
				Usage:    "Exact name of the playlist to create or refill",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "description",
				Aliases: []string{"d"},
				Usage:   "Playlist description",
			},
			&cli.StringFlag{
				Name:  "cover",
				Usage: "JPEG file to upload as playlist cover",
			},
			&cli.StringFlag{
				Name:  "market",
				Usage: "Two-letter market for search and top tracks (default from config)",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Tracks per artist, 1 to 10 (default from config)",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Overwrite an existing playlist without asking",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Abort on the first artist without a match or tracks",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve artists and tracks without changing any playlist",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the result as JSON",
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Also write the track list to a file (.csv, .md, .txt or .json)",
			},
		},
		Action: r.Build,
	}
}

// authCommand runs the OAuth flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authorize with Spotify using OAuth2 and store the tokens",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Auth,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file commands",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example configuration file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ConfigInit,
			},
		},
	}
}
