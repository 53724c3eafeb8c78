// Package importer turns a directory of ADR files into linked decisions.
//
// An import runs in two phases. The load phase reads every matching file
// once, builds a Decision from it and registers it with the target
// collection. Only when the whole directory is loaded does the link phase
// resolve cross-references and rewrite filename mentions into "#id"
// anchors, so a decision may reference a file that sorts after it.
package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/models"
	"github.com/starford/decisionlog/internal/parser"
	"github.com/starford/decisionlog/internal/storage"
)

// DefaultDateFormat is the Go layout for YYYY-MM-DD.
const DefaultDateFormat = "2006-01-02"

// Collection receives imported decisions.
type Collection interface {
	AddDecision(d *models.Decision)
	Decisions() []*models.Decision
}

// Importer imports one dialect of ADR files. It holds configuration only
// and may be reused across imports.
type Importer struct {
	dialect    parser.Dialect
	dir        storage.Dir
	dateFormat string
	location   *time.Location
	now        func() time.Time
	optErr     error
}

// Option configures an Importer.
type Option func(*Importer)

// WithDateFormat sets the Go time layout used to parse decision dates.
func WithDateFormat(layout string) Option {
	return func(i *Importer) {
		if layout != "" {
			i.dateFormat = layout
		}
	}
}

// WithLocation sets the time zone used to parse decision dates.
func WithLocation(loc *time.Location) Option {
	return func(i *Importer) {
		if loc != nil {
			i.location = loc
		}
	}
}

// WithTimeZone sets the time zone by IANA name. An unknown name is
// reported by New.
func WithTimeZone(name string) Option {
	return func(i *Importer) {
		if name == "" {
			return
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			i.optErr = fmt.Errorf("importer: time zone %q: %w", name, err)
			return
		}
		i.location = loc
	}
}

// WithDir sets the directory handle files are read through.
func WithDir(dir storage.Dir) Option {
	return func(i *Importer) {
		if dir != nil {
			i.dir = dir
		}
	}
}

// WithClock sets the clock used for decisions without a date line.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		if now != nil {
			i.now = now
		}
	}
}

// New creates an Importer for the given dialect.
func New(dialect parser.Dialect, opts ...Option) (*Importer, error) {
	if dialect == nil {
		return nil, fmt.Errorf("importer: dialect is required")
	}
	i := &Importer{
		dialect:    dialect,
		dir:        storage.Local{},
		dateFormat: DefaultDateFormat,
		location:   time.UTC,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.optErr != nil {
		return nil, i.optErr
	}
	return i, nil
}

// NewAdrTools creates an Importer for adr-tools decision logs.
func NewAdrTools(opts ...Option) (*Importer, error) {
	return New(parser.AdrTools{}, opts...)
}

// NewMadr creates an Importer for MADR decision logs.
func NewMadr(opts ...Option) (*Importer, error) {
	return New(parser.Madr{}, opts...)
}

// Dialect returns the dialect name.
func (i *Importer) Dialect() string {
	return i.dialect.Name()
}

// Import loads every matching file directly under path into coll, then
// resolves links and rewrites filename references. Every failure is
// returned as an *ImportError. Decisions registered with coll before a
// failure stay registered.
func (i *Importer) Import(coll Collection, path string) error {
	if err := i.importDecisions(coll, path); err != nil {
		return &ImportError{Dialect: i.dialect.Name(), Path: path, cause: err}
	}
	return nil
}

func (i *Importer) importDecisions(coll Collection, path string) error {
	if coll == nil {
		return fmt.Errorf("%w: a decision collection must be specified", apperr.ErrInvalidArgument)
	}
	if path == "" {
		return fmt.Errorf("%w: a path must be specified", apperr.ErrInvalidArgument)
	}
	info, err := i.dir.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", apperr.ErrInvalidArgument, i.dir.Abs(path))
		}
		return err
	}
	if !info.IsDir() {
		if i.dialect.RequiresDirectory() {
			return fmt.Errorf("%w: %s is not a directory", apperr.ErrInvalidArgument, i.dir.Abs(path))
		}
		return nil
	}

	corpus, err := i.load(coll, path)
	if err != nil {
		return err
	}
	i.link(corpus)
	rewrite(corpus)
	return nil
}

// load is the first phase: every matching file becomes a decision that is
// registered with coll and indexed by ID and filename.
func (i *Importer) load(coll Collection, path string) (*corpus, error) {
	entries, err := i.dir.ReadDir(path)
	if err != nil {
		return nil, err
	}

	c := newCorpus()
	for _, e := range entries {
		if e.IsDir() || !i.dialect.Matches(e.Name()) {
			continue
		}
		d, err := i.loadDecision(filepath.Join(path, e.Name()), e.Name())
		if err != nil {
			return nil, err
		}
		coll.AddDecision(d)
		c.add(e.Name(), d)
	}
	return c, nil
}

// link is the second phase: mentions in each decision's original content
// are resolved against the filename index. Unresolved mentions are dropped.
func (i *Importer) link(c *corpus) {
	for _, d := range c.decisions() {
		for _, m := range i.dialect.Mentions(d.Content) {
			target, ok := c.byFilename[m.Filename]
			if !ok {
				continue
			}
			if m.Always || !d.HasLinkTo(target) {
				d.AddLink(target, m.Type)
			}
		}
	}
}
