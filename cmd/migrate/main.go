package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/meridian/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDatabaseURL = "MERIDIAN_DB_URL"

type options struct {
	url     string
	up      bool
	down    bool
	steps   int
	version bool
	force   int
	forced  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.url, "url", "", "postgres:// connection URL (defaults to "+envDatabaseURL+", then the loaded config)")
	flag.BoolVar(&opts.up, "up", false, "Apply all pending migrations")
	flag.BoolVar(&opts.down, "down", false, "Revert all migrations")
	flag.IntVar(&opts.steps, "steps", 0, "Apply N migrations (negative reverts)")
	flag.BoolVar(&opts.version, "version", false, "Print the current schema version")
	flag.IntVar(&opts.force, "force", -1, "Force the schema version without running migrations")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		opts.forced = opts.forced || f.Name == "force"
	})

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	target, err := resolveURL(opts.url)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, target)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch {
	case opts.version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case opts.forced:
		if err := m.Force(opts.force); err != nil {
			return fmt.Errorf("force version %d: %w", opts.force, err)
		}
		fmt.Printf("forced to version %d\n", opts.force)
	case opts.up:
		if err := ignoreNoChange(m.Up()); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		fmt.Println("schema up to date")
	case opts.down:
		if err := ignoreNoChange(m.Down()); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		fmt.Println("schema reverted")
	case opts.steps != 0:
		if err := ignoreNoChange(m.Steps(opts.steps)); err != nil {
			return fmt.Errorf("migrate %d steps: %w", opts.steps, err)
		}
		fmt.Printf("applied %d migration steps\n", opts.steps)
	default:
		fmt.Fprintln(os.Stderr, "usage: migrate [-url <postgres-url>] -up|-down|-steps N|-version|-force N")
		flag.PrintDefaults()
	}
	return nil
}

// resolveURL prefers the explicit flag, then the environment, then the
// database section of the service configuration.
func resolveURL(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := os.Getenv(envDatabaseURL); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.Database.URL(), nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
