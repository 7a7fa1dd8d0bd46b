package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/text/cases"

	"github.com/mcdev12/friendlies/go/internal/assets"
	"github.com/mcdev12/friendlies/go/internal/dbconfig"
	"github.com/mcdev12/friendlies/go/internal/migrations"
	"github.com/mcdev12/friendlies/go/internal/teams"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	// 1) Load the demo teams
	reqs, err := assets.DemoTeams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load demo teams: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig and make sure the schema exists
	cfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "db config: %v\n", err)
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	app := teams.NewApp(teams.NewRepository(pool), nil)

	// 3) Register through the directory, skipping names already present
	existing, err := app.SearchTeams(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "list teams: %v\n", err)
		os.Exit(1)
	}
	folder := cases.Fold()
	names := make(map[string]bool, len(existing))
	for _, t := range existing {
		names[folder.String(t.Name)] = true
	}

	var (
		total    = len(reqs)
		inserted int
		skipped  int
		errs     int
	)
	for _, req := range reqs {
		if names[folder.String(req.Name)] {
			skipped++
			continue
		}
		if _, err := app.RegisterTeam(ctx, req); err != nil {
			fmt.Fprintf(os.Stderr, "error registering team %s: %v\n", req.Name, err)
			errs++
			continue
		}
		inserted++
	}

	// 4) Print summary
	fmt.Printf(
		"Teams seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
