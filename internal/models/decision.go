// Package models defines the domain types for the decision log.
package models

import "time"

// Format is the markup language a piece of content is written in.
type Format string

const (
	FormatMarkdown Format = "Markdown"
	FormatAsciiDoc Format = "AsciiDoc"
)

// Canonical link types produced by the adr-tools dialect.
const (
	LinkSupersededBy = "SupersededBy"
	LinkSupersedes   = "Supersedes"
	LinkAmendedBy    = "AmendedBy"
	LinkRequires     = "Requires"
	LinkReferences   = "References"
)

// Canonical statuses.
const (
	StatusProposed   = "Proposed"
	StatusSuperseded = "Superseded"
)

// Decision represents one architecture decision record.
type Decision struct {
	ID       string    `json:"id" yaml:"id"`
	Filename string    `json:"filename" yaml:"filename"`
	Title    string    `json:"title" yaml:"title"`
	Date     time.Time `json:"date" yaml:"date"`
	Status   string    `json:"status" yaml:"status"`
	Content  string    `json:"content" yaml:"content"`
	Format   Format    `json:"format" yaml:"format"`
	Links    []Link    `json:"links,omitempty" yaml:"links,omitempty"`
}

// Link represents a directed, typed edge between two decisions.
// For the MADR dialect Type is free text taken from the document.
type Link struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Type   string `json:"type" yaml:"type"`
}

// AddLink appends an edge from d to target. Duplicates are kept.
func (d *Decision) AddLink(target *Decision, linkType string) {
	d.Links = append(d.Links, Link{
		Source: d.ID,
		Target: target.ID,
		Type:   linkType,
	})
}

// HasLinkTo reports whether d already has an edge of any type to target.
func (d *Decision) HasLinkTo(target *Decision) bool {
	for _, l := range d.Links {
		if l.Target == target.ID {
			return true
		}
	}
	return false
}
