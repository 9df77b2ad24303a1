// jobmate-apply-service
//
// Quick-apply automation for candidate profiles: logs a browser session into
// the job site, searches postings by keyword, skips what was already applied
// to and walks the remaining quick-apply forms up to a per-run budget.
//
// Commands:
//   - serve  : consume CMD_START_APPLY_RUN from Redis with a bounded worker pool
//   - run    : one run from flags/env, result printed as JSON
//   - history: applications recorded for a profile
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"jobmate/apply-service/cmd/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:    "apply-service",
		Usage:   "quick-apply automation engine",
		Version: commands.Version,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "consume queued run requests",
				Flags:  []cli.Flag{envFlag()},
				Action: commands.ServeAction,
			},
			{
				Name:  "run",
				Usage: "execute a single run and print its result",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:     "profile",
						Usage:    "candidate profile id",
						Sources:  cli.EnvVars("APPLY_PROFILE_ID"),
						Required: true,
					},
					&cli.StringFlag{
						Name:     "keyword",
						Usage:    "search keyword",
						Sources:  cli.EnvVars("APPLY_KEYWORD"),
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Usage:    "site login email",
						Sources:  cli.EnvVars("APPLY_EMAIL"),
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "site login password",
						Sources:  cli.EnvVars("APPLY_PASSWORD"),
						Required: true,
					},
					&cli.IntFlag{
						Name:    "max",
						Usage:   "maximum applications for this run (1-50)",
						Sources: cli.EnvVars("APPLY_MAX_APPLICATIONS"),
						Value:   5,
					},
					&cli.StringSliceFlag{
						Name:  "blocked",
						Usage: "employer to skip (repeatable)",
					},
					&cli.FloatFlag{
						Name:  "min-salary",
						Usage: "skip postings advertising a lower salary (0 disables)",
					},
					&cli.FloatFlag{
						Name:  "min-salary-contractor",
						Usage: "salary floor for contractor (PJ) postings (0 uses --min-salary)",
					},
				},
				Action: commands.RunAction,
			},
			{
				Name:  "history",
				Usage: "list the applications recorded for a profile",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:     "profile",
						Usage:    "candidate profile id",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum rows",
						Value: 50,
					},
				},
				Action: commands.HistoryAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatalf("[apply-service] %v", err)
	}
}

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "path of an optional .env file",
		Value: ".env",
	}
}
