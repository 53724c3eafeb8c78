// Package parser extracts decision metadata and cross-reference mentions
// from the raw text of a single ADR file. It supports two dialects:
// adr-tools and MADR. Parsing is pure: no file access, no clock.
package parser

import (
	"fmt"
	"strings"
)

// Dialect names.
const (
	DialectAdrTools = "adrtools"
	DialectMadr     = "madr"
)

// Fields holds the metadata a dialect extracts from one file.
type Fields struct {
	ID    string
	Title string
	// Date is the raw date text; empty when the file carries no date line.
	Date string
	// Status is already normalised; HasStatus is false when no status was found.
	Status    string
	HasStatus bool
}

// Mention is a reference to another decision file found in the text.
type Mention struct {
	Type     string
	Filename string
	// Always requests a new edge even when one to the same target exists.
	Always bool
}

// Dialect extracts decision data for one ADR convention.
type Dialect interface {
	// Name returns the dialect identifier (see DialectAdrTools, DialectMadr).
	Name() string
	// Matches reports whether filename follows the dialect's naming convention.
	Matches(filename string) bool
	// RequiresDirectory reports whether a non-directory import path is rejected.
	RequiresDirectory() bool
	// Fields extracts metadata from a file's name and CR-stripped content.
	Fields(filename, content string) (Fields, error)
	// Mentions returns cross-reference mentions in resolution order.
	Mentions(content string) []Mention
}

// ByName returns the dialect registered under name.
func ByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case DialectAdrTools, "adr-tools", "":
		return AdrTools{}, nil
	case DialectMadr:
		return Madr{}, nil
	default:
		return nil, fmt.Errorf("parser: unknown dialect %q", name)
	}
}

// StripCR removes every carriage return from content.
func StripCR(content string) string {
	return strings.ReplaceAll(content, "\r", "")
}
