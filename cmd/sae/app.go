package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/absence-emailer/internal/config"
	"github.com/stemsi/absence-emailer/internal/diag"
	"github.com/stemsi/absence-emailer/internal/mailclient"
	"github.com/stemsi/absence-emailer/internal/model"
	"github.com/stemsi/absence-emailer/internal/prompt"
	"github.com/stemsi/absence-emailer/internal/repository"
	"github.com/stemsi/absence-emailer/internal/service"
	"github.com/stemsi/absence-emailer/internal/validator"
)

var errDuplicateID = errors.New("duplicate student ID")

// app runs one interactive session: load, prompt, aggregate, render, send.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	console   *prompt.Console
	sender    mailclient.Sender
	recorder  service.SendRecorder
	runID     uuid.UUID
	now       func() time.Time
	// interrupt wraps the send phase, e.g. with signal.NotifyContext.
	interrupt func(context.Context) (context.Context, context.CancelFunc)
}

func (a *app) run(ctx context.Context, rosterPath string) error {
	a.console.Printf("Student Absence Emailer version %s\n", version)

	// ─── Roster ────────────────────────────────────────────────────────
	rosterRepo := repository.NewRosterRepository(a.cfg.Roster, a.log)
	if _, err := rosterRepo.CheckFreshness(rosterPath, a.now()); err != nil {
		return err
	}
	roster, _, err := rosterRepo.Load(rosterPath)
	if err != nil {
		return err
	}

	// ─── Subject ───────────────────────────────────────────────────────
	subject, err := a.console.Ask("\nEnter email subject:")
	if err != nil {
		return err
	}

	// ─── Dates, Periods, and optional times ────────────────────────────
	parser := service.NewParserService(a.cfg.Schedule, a.console, a.log)
	parser.SetClock(a.now)

	a.console.Heading("Enter mm/dd/yy #,#,#,# below (# = 1-8 or Adv).")
	lines, err := a.console.Collect(parser.Validate, "Disregarding invalid input %s")
	if err != nil {
		return err
	}
	entries, err := parser.ParseAll(lines, a.console.Out())
	if err != nil {
		return err
	}

	// ─── Student IDs ───────────────────────────────────────────────────
	a.console.Heading("Enter student IDs below (one per line).")
	ids, err := a.console.Collect(uniqueID, "Duplicate ID %s found. Disregarded.")
	if err != nil {
		return err
	}

	res := service.NewAggregateService(a.log).Aggregate(roster, ids, entries)

	// ─── Message ───────────────────────────────────────────────────────
	a.console.Heading("Enter email message below.")
	body, err := a.console.Collect(nil, "")
	if err != nil {
		return err
	}
	onBehalfOf, err := a.console.Ask("Enter name on whose behalf the emails are being sent (or <Enter> to skip):")
	if err != nil {
		return err
	}

	renderer, err := service.NewRenderService(a.cfg.SubjectPrefix)
	if err != nil {
		return err
	}
	emails, err := renderer.RenderAll(res.Aggregation.Teachers(), model.Message{
		Subject:    subject,
		Body:       strings.Join(body, "\n"),
		OnBehalfOf: onBehalfOf,
		Footer:     a.cfg.Footer,
	})
	if err != nil {
		return err
	}

	// ─── Send ──────────────────────────────────────────────────────────
	testAddr, err := a.askTestAddress()
	if err != nil {
		return err
	}

	dispatcher := service.NewDispatchService(a.sender, a.console, a.console.Out(), a.log)
	if a.recorder != nil {
		dispatcher.SetRecorder(a.recorder, a.runID)
	}
	sendCtx, stop := a.sendContext(ctx)
	defer stop()
	if _, err := dispatcher.Run(sendCtx, emails, testAddr); err != nil {
		return err
	}

	a.console.Printf("\n%s\n", service.FinalSummary(res))
	return nil
}

func (a *app) sendContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.interrupt == nil {
		return context.WithCancel(ctx)
	}
	return a.interrupt(ctx)
}

// askTestAddress re-asks until the answer is blank or a valid address.
func (a *app) askTestAddress() (string, error) {
	for {
		addr, err := a.console.Ask("Test email address (or <Enter> to skip):")
		if err != nil || addr == "" {
			return "", err
		}
		if verr := validator.Email(addr); verr != nil {
			diag.New(diag.CodeInvalidInput, "%s is not an email address", addr).Log(a.log)
			continue
		}
		return addr, nil
	}
}

func uniqueID(line string, accepted []string) error {
	if slices.Contains(accepted, line) {
		return fmt.Errorf("%w: %s", errDuplicateID, line)
	}
	return nil
}
