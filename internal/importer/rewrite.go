package importer

import (
	"fmt"
	"strings"

	"github.com/starford/decisionlog/internal/models"
)

// rewrite replaces every literal occurrence of every corpus filename in
// every decision's content with that file's permalink anchor.
//
// Filenames are applied in directory listing order with no longest-first
// tie-break: when one filename is a substring of another, whichever is
// replaced first wins. Changing this order changes the output.
func rewrite(c *corpus) {
	for _, d := range c.decisions() {
		content := d.Content
		for _, name := range c.filenames {
			content = strings.ReplaceAll(content, name, Anchor(c.byFilename[name]))
		}
		d.Content = content
	}
}

// Anchor returns the in-document permalink for d, e.g. "#8".
func Anchor(d *models.Decision) string {
	return "#" + urlEncode(d.ID)
}

// urlEncode form-encodes value, keeping only ASCII alphanumerics and
// ".-*_" literal. Spaces become %20 rather than "+"; every other byte of
// the UTF-8 encoding is percent-escaped in upper-case hex.
func urlEncode(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '.', c == '-', c == '*', c == '_':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
