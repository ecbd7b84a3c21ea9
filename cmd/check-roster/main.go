package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/stemsi/absence-emailer/internal/config"
	"github.com/stemsi/absence-emailer/internal/diag"
	"github.com/stemsi/absence-emailer/internal/logger"
	"github.com/stemsi/absence-emailer/internal/model"
	"github.com/stemsi/absence-emailer/internal/repository"
)

func main() {
	var rosterPath string
	flag.StringVar(&rosterPath, "roster", "", "Path to the roster CSV (default: $ROSTER_CSV or "+config.DefaultRosterFile+")")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if rosterPath == "" {
		rosterPath = cfg.RosterPath
	}
	if rosterPath == "" {
		rosterPath = config.DefaultRosterFile
	}

	repo := repository.NewRosterRepository(cfg.Roster, log)

	fmt.Printf("=== Checking %s ===\n", rosterPath)

	stale, err := repo.CheckFreshness(rosterPath, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read roster")
	}
	roster, warnings, err := repo.Load(rosterPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load roster")
	}
	if stale != nil {
		warnings = append([]diag.Warning{*stale}, warnings...)
	}

	report(os.Stdout, roster, warnings)

	if len(warnings) > 0 {
		os.Exit(1)
	}
}

// report prints roster totals, teacher coverage per period and a count of
// each warning code.
func report(w io.Writer, roster model.Roster, warnings []diag.Warning) {
	perPeriod := make(map[model.PeriodCode]map[string]bool)
	for _, s := range roster {
		for p, email := range s.Teachers {
			if perPeriod[p] == nil {
				perPeriod[p] = make(map[string]bool)
			}
			perPeriod[p][email] = true
		}
	}

	fmt.Fprintf(w, "Students: %d\n", len(roster))

	periods := make([]string, 0, len(perPeriod))
	for p := range perPeriod {
		periods = append(periods, string(p))
	}
	sort.Strings(periods)
	for _, p := range periods {
		fmt.Fprintf(w, "  Period %-4s %d teachers\n", p, len(perPeriod[model.PeriodCode(p)]))
	}

	if len(warnings) == 0 {
		fmt.Fprintln(w, "\nNo problems found.")
		return
	}

	counts := make(map[diag.Code]int)
	for _, warn := range warnings {
		counts[warn.Code]++
	}
	found := make([]string, 0, len(counts))
	for c := range counts {
		found = append(found, string(c))
	}
	sort.Strings(found)

	fmt.Fprintf(w, "\n%d problems:\n", len(warnings))
	for _, c := range found {
		fmt.Fprintf(w, "  %-22s %d  (%s)\n", c, counts[diag.Code(c)], diag.Title(diag.Code(c)))
	}
}
