package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// HistoryAction lists the ledger records of a profile, newest first.
func HistoryAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	profileID := cmd.String("profile")
	recs, err := app.Ledger.ListByProfile(ctx, profileID, cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Printf("no applications recorded for %s\n", profileID)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Applied At", "Company", "Title", "URL")
	for _, r := range recs {
		table.Append(
			r.AppliedAt.Local().Format("2006-01-02 15:04"),
			r.Company,
			r.JobTitle,
			r.JobURL,
		)
	}
	return table.Render()
}
