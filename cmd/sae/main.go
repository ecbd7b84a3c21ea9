package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/absence-emailer/internal/config"
	"github.com/stemsi/absence-emailer/internal/database"
	"github.com/stemsi/absence-emailer/internal/logger"
	"github.com/stemsi/absence-emailer/internal/mailclient"
	"github.com/stemsi/absence-emailer/internal/prompt"
	"github.com/stemsi/absence-emailer/internal/repository"
	"github.com/stemsi/absence-emailer/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	var (
		rosterPath string
		dryRun     bool
		pause      bool
	)
	flag.StringVar(&rosterPath, "roster", "", "Path to the roster CSV (default: $ROSTER_CSV or "+config.DefaultRosterFile+")")
	flag.BoolVar(&dryRun, "dry-run", false, "Print emails instead of handing them to the mail client")
	flag.BoolVar(&pause, "pause", runtime.GOOS == "windows", "Wait for <Enter> before exiting")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	runID := uuid.New()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat).
		With().
		Str("run_id", runID.String()).
		Logger()

	// Ctrl-C keeps its default behaviour while prompting; only the send
	// phase traps it so a send in flight can wind down.
	ctx := context.Background()

	// ─── Mail Client ───────────────────────────────────────────────────
	sender, err := mailclient.New(runtime.GOOS, dryRun, os.Stdout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up mail client")
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		console: prompt.NewConsole(os.Stdin, os.Stdout, log),
		sender:  sender,
		runID:   runID,
		now:     time.Now,
	}
	a.interrupt = func(ctx context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(ctx, os.Interrupt)
	}

	// ─── Optional Audit Log ────────────────────────────────────────────
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to audit database")
		}
		defer pool.Close()
		a.recorder = repository.NewAuditRepository(pool)
	}

	err = a.run(ctx, resolveRosterPath(rosterPath, cfg))
	if err != nil && !errors.Is(err, service.ErrAborted) {
		log.Fatal().Err(err).Msg("Student Absence Emailer failed")
	}

	if pause {
		a.console.Pause()
	}
}

// resolveRosterPath picks the -roster flag, then ROSTER_CSV, then the
// default file beside the executable, then the default file in the
// working directory.
func resolveRosterPath(flagPath string, cfg *config.Config) string {
	if flagPath != "" {
		return flagPath
	}
	if cfg.RosterPath != "" {
		return cfg.RosterPath
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), config.DefaultRosterFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return config.DefaultRosterFile
}
