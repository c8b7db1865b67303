// Package main provides the schema migration runner for the campaign and
// black-market tables.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/viper"

	"github.com/commlink/rollbot/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sourceDir := flag.String("migrations", "migrations", "directory holding migration files")
	command := flag.String("command", "up", "one of: up, down, version, force")
	steps := flag.Int("steps", 0, "limit up/down to this many steps (0 = all)")
	forceTo := flag.Int("force-to", -1, "version to force when command is 'force'")
	flag.Parse()

	if err := run(*configPath, *sourceDir, *command, *steps, *forceTo); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, sourceDir, command string, steps, forceTo int) error {
	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	sub := v.Sub("database")
	if sub == nil {
		return fmt.Errorf("config %s has no database section", configPath)
	}
	var dbCfg config.DatabaseConfig
	if err := sub.Unmarshal(&dbCfg); err != nil {
		return fmt.Errorf("parsing database config: %w", err)
	}

	m, err := migrate.New("file://"+sourceDir, dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch command {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
		err = nil
	case "force":
		if forceTo < 0 {
			return errors.New("force requires -force-to")
		}
		err = m.Force(forceTo)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	version, dirty, verr := m.Version()
	if errors.Is(verr, migrate.ErrNilVersion) {
		fmt.Fprintln(os.Stdout, "schema is empty")
		return nil
	}
	fmt.Fprintf(os.Stdout, "schema at version %d (dirty=%v)\n", version, dirty)
	return nil
}
