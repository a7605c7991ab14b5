package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"techpoints/internal/pkg/config"
	"techpoints/internal/pkg/errs"

	"ariga.io/atlas-go-sdk/atlasexec"
)

const migrateTimeout = 2 * time.Minute

func main() {
	dir := flag.String("dir", "migrations", "directory holding versioned migration files")
	atlasBin := flag.String("atlas", "atlas", "path to the atlas binary")
	dryRun := flag.Bool("dry-run", false, "print pending migrations without applying them")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	if err := migrate(ctx, cfg.DB, *dir, *atlasBin, *dryRun); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func migrate(ctx context.Context, db config.DBConfig, dir, atlasBin string, dryRun bool) error {
	workdir, err := atlasexec.NewWorkingDir(
		atlasexec.WithMigrations(os.DirFS(dir)),
	)
	if err != nil {
		return errs.Wrap(err, "failed to prepare atlas working dir")
	}
	defer workdir.Close()

	client, err := atlasexec.NewClient(workdir.Path(), atlasBin)
	if err != nil {
		return errs.Wrap(err, "failed to create atlas client")
	}

	res, err := client.MigrateApply(ctx, &atlasexec.MigrateApplyParams{
		URL:    db.BuildDSN(),
		DryRun: dryRun,
	})
	if err != nil {
		return errs.Wrap(err, "atlas migrate apply")
	}

	for _, f := range res.Applied {
		slog.Info("applied migration", "file", f.Name, "version", f.Version)
	}
	slog.Info("schema is up to date",
		"from", res.Current,
		"to", res.Target,
		"applied", len(res.Applied),
		"dry_run", dryRun,
	)
	return nil
}
