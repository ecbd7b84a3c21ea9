package service

import (
	"bytes"
	"embed"
	"fmt"
	htmltmpl "html/template"
	"strings"
	texttmpl "text/template"
	"time"

	"github.com/stemsi/absence-emailer/internal/model"
)

//go:embed templates/absence.gohtml templates/absence.txt
var templateFS embed.FS

// nameWidth is the plain-text column width for student names.
const nameWidth = 27

type (
	studentView struct {
		Name string
		ID   string
		Line string // plain-text row: padded/truncated name, then ID
	}

	periodView struct {
		Heading  string
		Students []studentView
	}

	dateView struct {
		Heading string
		Periods []periodView
	}

	emailView struct {
		Title        string
		OnBehalfOf   string
		Message      string
		MessageLines []string
		Footer       string
		Dates        []dateView
	}
)

// RenderService builds the HTML and plain-text bodies of absence emails.
type RenderService struct {
	html          *htmltmpl.Template
	text          *texttmpl.Template
	subjectPrefix string
}

// NewRenderService parses the embedded email templates.
func NewRenderService(subjectPrefix string) (*RenderService, error) {
	html, err := htmltmpl.ParseFS(templateFS, "templates/absence.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	text, err := texttmpl.ParseFS(templateFS, "templates/absence.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text template: %w", err)
	}
	return &RenderService{
		html:          html.Option("missingkey=error"),
		text:          text.Option("missingkey=error"),
		subjectPrefix: subjectPrefix,
	}, nil
}

// Subject prefixes the operator's subject line.
func (s *RenderService) Subject(subject string) string {
	return s.subjectPrefix + subject
}

// Render produces one teacher's email.
func (s *RenderService) Render(t model.TeacherAbsences, msg model.Message) (model.RenderedEmail, error) {
	view := emailView{
		Title:        "SAE email",
		OnBehalfOf:   msg.OnBehalfOf,
		Message:      msg.Body,
		MessageLines: strings.Split(msg.Body, "\n"),
		Footer:       msg.Footer,
	}

	var summary strings.Builder
	for _, d := range t.Dates {
		dv := dateView{Heading: dateHeading(d.Date)}
		for _, p := range d.Periods {
			heading := "Period " + string(p.Period)
			if note := p.Annotation(); note != "" {
				heading += " (" + note + ")"
			}
			pv := periodView{Heading: heading}
			for _, st := range p.Students {
				pv.Students = append(pv.Students, studentView{
					Name: st.Name,
					ID:   st.ID,
					Line: fmt.Sprintf("%-*s %s", nameWidth, truncate(st.Name, nameWidth), st.ID),
				})
			}
			dv.Periods = append(dv.Periods, pv)
			fmt.Fprintf(&summary, "Period %s(%d) ", p.Period, len(p.Students))
		}
		view.Dates = append(view.Dates, dv)
	}

	var html, text bytes.Buffer
	if err := s.html.Execute(&html, view); err != nil {
		return model.RenderedEmail{}, fmt.Errorf("render html for %s: %w", t.Email, err)
	}
	if err := s.text.Execute(&text, view); err != nil {
		return model.RenderedEmail{}, fmt.Errorf("render text for %s: %w", t.Email, err)
	}

	return model.RenderedEmail{
		To:      t.Email,
		Subject: s.Subject(msg.Subject),
		HTML:    html.String(),
		Text:    text.String(),
		Summary: summary.String(),
	}, nil
}

// RenderAll renders every teacher's email in order.
func (s *RenderService) RenderAll(teachers []model.TeacherAbsences, msg model.Message) ([]model.RenderedEmail, error) {
	emails := make([]model.RenderedEmail, 0, len(teachers))
	for _, t := range teachers {
		e, err := s.Render(t, msg)
		if err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, nil
}

// dateHeading renders "Friday 04/18/25".
func dateHeading(date string) string {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Weekday().String() + " " + date
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
