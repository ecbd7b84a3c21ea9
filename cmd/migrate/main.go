package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stemsi/absence-emailer/internal/config"
	"github.com/stemsi/absence-emailer/internal/logger"
	"github.com/stemsi/absence-emailer/migrations"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set; the audit log is disabled")
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed to initialize")
	}
	defer m.Close()

	switch command := args[0]; command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Up failed")
		}
		log.Info().Msg("Audit schema migrated up")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Down failed")
		}
		log.Info().Msg("Audit schema migrated down")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("Version: none")
			return
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Version failed")
		}
		fmt.Printf("Version: %d, Dirty: %t\n", version, dirty)
	case "force":
		if len(args) < 2 {
			log.Fatal().Msg("force requires version argument")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid version")
		}
		if err := m.Force(v); err != nil {
			log.Fatal().Err(err).Msg("Force failed")
		}
		log.Info().Int("version", v).Msg("Forced version")
	default:
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Println("Usage: migrate <command>")
	fmt.Println("Manages the sent_emails audit table in $DATABASE_URL.")
	fmt.Println("Commands: up, down, version, force <version>")
}
