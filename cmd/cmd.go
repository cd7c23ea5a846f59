// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: table, csv, markdown, json",
			Value:   "table",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to a file instead of stdout",
		},
	}
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "email",
			Aliases: []string{"e"},
			Usage:   "Account email (prompted when omitted)",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password (prompted without echo when omitted)",
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the bundled template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles sign-in, registration, and session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in account",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in with email and password",
				Flags:  credentialFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:    "register",
				Aliases: []string{"signup"},
				Usage:   "Create an account and sign in",
				Flags:   credentialFlags(),
				Action:  r.AuthRegister,
			},
			{
				Name:   "google",
				Usage:  "Sign in with Google in the browser",
				Action: r.AuthGoogle,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and remove the account from this device",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the signed-in account",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// placesCommand handles catalog browsing and likes
func placesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "places",
		Usage: "Browse the place catalog and manage liked places",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List catalog places",
				Flags: append(formatFlags(), &cli.StringFlag{
					Name:  "filter",
					Usage: `Filter expression, e.g. 'rating >= 4.5 && category == "cafe"'`,
				}),
				Action: r.PlacesList,
			},
			{
				Name:   "liked",
				Usage:  "List liked places",
				Flags:  formatFlags(),
				Action: r.PlacesLiked,
			},
			{
				Name:      "like",
				Usage:     "Add a place to the liked list",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.PlacesLike,
			},
			{
				Name:      "unlike",
				Usage:     "Remove a place from the liked list",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.PlacesUnlike,
			},
			{
				Name:   "locations",
				Usage:  "List place coordinates",
				Flags:  formatFlags(),
				Action: r.PlacesLocations,
			},
		},
	}
}

// schedulesCommand handles the signed-in user's schedule
func schedulesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "schedules",
		Aliases: []string{"schedule"},
		Usage:   "Manage travel schedules",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List schedule entries",
				Flags:   formatFlags(),
				Action:  r.SchedulesList,
			},
			{
				Name:  "add",
				Usage: "Append a schedule entry",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "place",
						Usage: "Catalog place ID the entry refers to",
					},
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "Entry title (defaults to the place name)",
					},
					&cli.StringSliceFlag{
						Name:  "field",
						Usage: "Extra key=value field, repeatable",
					},
				},
				Action: r.SchedulesAdd,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where logs go while the TUI owns the terminal",
				Value: "./tmp/tripmate-tui.log",
			},
		},
		Action: r.TUI,
	}
}
