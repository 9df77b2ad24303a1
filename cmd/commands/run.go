package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"jobmate/apply-service/internal/model"
)

// RunAction executes one run in the foreground and prints the RunResult as
// JSON. Events are not published; the result is the output.
func RunAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := model.RunConfig{
		Credentials: model.Credentials{
			Email:    cmd.String("email"),
			Password: cmd.String("password"),
		},
		Keyword:          cmd.String("keyword"),
		BlockedEmployers: cmd.StringSlice("blocked"),
		MaxApplications:  cmd.Int("max"),
		ProfileID:        cmd.String("profile"),
		MinSalary:        cmd.Float("min-salary"),

		MinSalaryContractor: cmd.Float("min-salary-contractor"),
	}

	res := app.coordinator(nil).Run(ctx, cfg)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if !res.Success {
		return fmt.Errorf("run failed: %s", res.Message)
	}
	return nil
}
