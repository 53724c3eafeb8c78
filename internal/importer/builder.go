package importer

import (
	"fmt"
	"time"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/models"
	"github.com/starford/decisionlog/internal/parser"
)

// loadDecision reads one file and builds its decision.
func (i *Importer) loadDecision(path, filename string) (*models.Decision, error) {
	data, err := i.dir.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return i.build(filename, parser.StripCR(string(data)))
}

// build wraps dialect output into a decision, filling in the default
// status and date.
func (i *Importer) build(filename, content string) (*models.Decision, error) {
	f, err := i.dialect.Fields(filename, content)
	if err != nil {
		return nil, err
	}

	status := f.Status
	if !f.HasStatus {
		status = models.StatusProposed
	}

	date, err := i.parseDate(filename, f.Date)
	if err != nil {
		return nil, err
	}

	return &models.Decision{
		ID:       f.ID,
		Filename: filename,
		Title:    f.Title,
		Date:     date,
		Status:   status,
		Content:  content,
		Format:   models.FormatMarkdown,
	}, nil
}

// parseDate parses raw with the configured layout. An empty value means
// the decision has no date and gets the current time.
func (i *Importer) parseDate(filename, raw string) (time.Time, error) {
	if raw == "" {
		return i.now(), nil
	}
	t, err := parseDate(i.dateFormat, raw, i.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: date %q: %v", apperr.ErrMalformed, filename, raw, err)
	}
	return t, nil
}
