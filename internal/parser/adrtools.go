package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/models"
)

const (
	untitled               = "Untitled"
	supercededAltSpelling  = "Superceded"
	adrToolsIDPrefixLength = 4
	adrToolsFilenameSuffix = ".md"
)

var (
	adrTitleRe   = regexp.MustCompile(`(?m)^# \d*\. (.*)$`)
	adrDateRe    = regexp.MustCompile(`(?m)^Date: (\d{4}-\d{2}-\d{2})$`)
	adrStatusRe  = regexp.MustCompile(`## Status\n\n(\w*)`)
	adrGenericRe = regexp.MustCompile(`\[.*\]\((.*)\)`)
)

// adrLinkPattern maps one typed link sentence to its canonical link type.
type adrLinkPattern struct {
	re       *regexp.Regexp
	linkType string
}

// adrLinkPatterns are evaluated in order; each match always adds an edge.
var adrLinkPatterns = []adrLinkPattern{
	{regexp.MustCompile(`(?m)^Superseded by \[.*\]\((.*)\)$`), models.LinkSupersededBy},
	{regexp.MustCompile(`(?m)^Superceded by \[.*\]\((.*)\)$`), models.LinkSupersededBy},
	{regexp.MustCompile(`(?m)^Supersedes \[.*\]\((.*)\)$`), models.LinkSupersedes},
	{regexp.MustCompile(`(?m)^Supercedes \[.*\]\((.*)\)$`), models.LinkSupersedes},
	{regexp.MustCompile(`(?m)^Amended by \[.*\]\((.*)\)$`), models.LinkAmendedBy},
	{regexp.MustCompile(`(?m)^requires \[.*\]\((.*)\)$`), models.LinkRequires},
}

// AdrTools is the legacy dialect written by adr-tools:
//
//	Filename: NNNN-title.md
//	# N. Title
//
//	Date: YYYY-MM-DD
//
//	## Status
//
//	Accepted
type AdrTools struct{}

// Name implements Dialect.
func (AdrTools) Name() string { return DialectAdrTools }

// Matches accepts any Markdown file.
func (AdrTools) Matches(filename string) bool {
	return strings.HasSuffix(filename, adrToolsFilenameSuffix)
}

// RequiresDirectory implements Dialect.
func (AdrTools) RequiresDirectory() bool { return true }

// Fields implements Dialect.
func (AdrTools) Fields(filename, content string) (Fields, error) {
	id, err := adrToolsID(filename)
	if err != nil {
		return Fields{}, err
	}

	f := Fields{ID: id, Title: untitled}
	if m := adrTitleRe.FindStringSubmatch(content); m != nil {
		f.Title = m[1]
	}
	if m := adrDateRe.FindStringSubmatch(content); m != nil {
		f.Date = m[1]
	}
	if m := adrStatusRe.FindStringSubmatch(content); m != nil {
		f.HasStatus = true
		f.Status = m[1]
		if f.Status == supercededAltSpelling {
			f.Status = models.StatusSuperseded
		}
	}
	return f, nil
}

// Mentions returns typed mentions first, then generic Markdown links as
// References, which only produce an edge when none to the target exists yet.
func (AdrTools) Mentions(content string) []Mention {
	var out []Mention
	for _, p := range adrLinkPatterns {
		for _, m := range p.re.FindAllStringSubmatch(content, -1) {
			out = append(out, Mention{Type: p.linkType, Filename: m[1], Always: true})
		}
	}
	for _, m := range adrGenericRe.FindAllStringSubmatch(content, -1) {
		out = append(out, Mention{Type: models.LinkReferences, Filename: m[1]})
	}
	return out
}

// adrToolsID parses the integer in the first four characters of filename,
// dropping leading zeros: "0008-x.md" -> "8".
func adrToolsID(filename string) (string, error) {
	if len(filename) < adrToolsIDPrefixLength {
		return "", fmt.Errorf("%w: %s: filename too short for a decision number", apperr.ErrMalformed, filename)
	}
	n, err := strconv.Atoi(filename[:adrToolsIDPrefixLength])
	if err != nil {
		return "", fmt.Errorf("%w: %s: decision number: %v", apperr.ErrMalformed, filename, err)
	}
	return strconv.Itoa(n), nil
}
