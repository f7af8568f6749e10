// clear-matches wipes the match history of the configured league and resets
// every team to its initial rating. The stored document is copied to
// <key>.bak.<unix-ms> first.
//
//	go run ./cmd/clear-matches -yes
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/Dosada05/fidel-league/app"
	"github.com/Dosada05/fidel-league/config"
	"github.com/Dosada05/fidel-league/services"
)

var errNotConfirmed = errors.New("refusing to clear matches without -yes")

func main() {
	yes := flag.Bool("yes", false, "confirm that every match should be deleted")
	timeout := flag.Duration("timeout", time.Minute, "overall time limit")
	flag.Parse()

	if err := run(*yes, *timeout, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "clear-matches:", err)
		os.Exit(1)
	}
}

func run(yes bool, timeout time.Duration, out io.Writer) error {
	if !yes {
		return errNotConfirmed
	}

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

	svc := services.NewLeagueService(repo, clock.New(), nil, logger)
	res, err := svc.ClearMatches(ctx)
	if err != nil {
		return err
	}

	if res.Backup != "" {
		fmt.Fprintln(out, "backup preserved at", res.Backup)
	} else {
		fmt.Fprintln(out, "no stored league found, nothing backed up")
	}
	fmt.Fprintf(out, "removed %d matches, teams reset to initial ratings\n", res.Removed)
	return nil
}
