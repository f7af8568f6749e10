// recompute replays the whole match history of the configured league and
// rewrites every rating, record and stored rating change.
// Storage is selected the same way as for the server (STORAGE_BACKEND etc.):
//
//	go run ./cmd/recompute
//	go run ./cmd/recompute -dry-run
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/Dosada05/fidel-league/app"
	"github.com/Dosada05/fidel-league/config"
	"github.com/Dosada05/fidel-league/league"
	"github.com/Dosada05/fidel-league/models"
	"github.com/Dosada05/fidel-league/services"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "print the recomputed standings without saving them")
	timeout := flag.Duration("timeout", time.Minute, "overall time limit")
	flag.Parse()

	if err := run(*dryRun, *timeout, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "recompute:", err)
		os.Exit(1)
	}
}

func run(dryRun bool, timeout time.Duration, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := app.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	repo, closeRepo, err := app.OpenLeagueRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	var (
		teams   []models.Team
		skipped []league.Skipped
	)
	if dryRun {
		doc, err := repo.Load(ctx)
		if err != nil {
			return err
		}
		skipped = league.Recompute(doc)
		teams = league.ListTeams(doc)
	} else {
		svc := services.NewLeagueService(repo, clock.New(), nil, logger)
		if skipped, err = svc.Recompute(ctx); err != nil {
			return err
		}
		if teams, err = svc.ListTeams(ctx); err != nil {
			return err
		}
	}

	printStandings(out, teams)
	for _, s := range skipped {
		fmt.Fprintf(out, "skipped match %d (%s)\n", s.MatchID, s.Reason)
	}
	if dryRun {
		fmt.Fprintln(out, "dry run: nothing saved")
	}
	return nil
}

func printStandings(out io.Writer, teams []models.Team) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTEAM\tELO\tW\tL\t+/-")
	for _, t := range teams {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\t%d\t%+d\n", t.ID, t.Name, t.Rating, t.Wins, t.Losses, t.PointDifferential)
	}
	tw.Flush()
}
