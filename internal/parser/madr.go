package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/decisionlog/internal/apperr"
)

const (
	madrDatePrefix   = "- Date: "
	madrStatusPrefix = "- Status: "
	madrLinksHeading = "## Links"
	madrTitleMarker  = 2 // "# "
)

var (
	madrFilenameRe = regexp.MustCompile(`^\d{8}-.*`)
	madrLinkRe     = regexp.MustCompile(`(.*) \[.*\]\((.*)\)`)
)

// Madr is the structured dialect (Markdown Architectural Decision Records):
//
//	Filename: YYYYMMDD-title.md
//	# Title
//
//	- Status: accepted
//	- Date: YYYY-MM-DD
//	...
//	## Links
//
//	- Refined by [Other](YYYYMMDD-other.md)
//
// The filename itself is the decision ID, and every line in the Links
// section produces an edge typed by its free-text description.
type Madr struct{}

// Name implements Dialect.
func (Madr) Name() string { return DialectMadr }

// Matches accepts Markdown files with an eight-digit numeric prefix.
func (Madr) Matches(filename string) bool {
	return strings.HasSuffix(filename, ".md") && madrFilenameRe.MatchString(filename)
}

// RequiresDirectory implements Dialect.
func (Madr) RequiresDirectory() bool { return false }

// Fields implements Dialect.
func (Madr) Fields(filename, content string) (Fields, error) {
	lines := strings.Split(content, "\n")

	if len(lines[0]) < madrTitleMarker {
		return Fields{}, fmt.Errorf("%w: %s: first line is not a title heading", apperr.ErrMalformed, filename)
	}
	f := Fields{
		ID:    filename,
		Title: lines[0][madrTitleMarker:],
	}

	for _, line := range lines {
		if strings.HasPrefix(line, madrDatePrefix) {
			f.Date = line[len(madrDatePrefix):]
			break
		}
	}

	for _, line := range lines {
		if strings.HasPrefix(line, madrStatusPrefix) {
			s := line[len(madrStatusPrefix):]
			if s == "" {
				return Fields{}, fmt.Errorf("%w: %s: empty status", apperr.ErrMalformed, filename)
			}
			f.Status = upperFirst(s)
			f.HasStatus = true
			break
		}
	}

	return f, nil
}

// Mentions returns one mention per matching line of the Links section,
// which runs from its heading to the end of the file.
func (Madr) Mentions(content string) []Mention {
	var out []Mention
	inLinks := false
	for _, line := range strings.Split(content, "\n") {
		if !inLinks {
			inLinks = strings.HasPrefix(line, madrLinksHeading)
			continue
		}
		if line == "" {
			continue
		}
		if m := madrLinkRe.FindStringSubmatch(line); m != nil {
			out = append(out, Mention{Type: m[1], Filename: m[2], Always: true})
		}
	}
	return out
}

// upperFirst upper-cases the first rune of s and leaves the rest untouched.
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
