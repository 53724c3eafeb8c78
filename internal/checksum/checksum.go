// Package checksum fingerprints imported decisions so re-imports can report
// which ones changed.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/starford/decisionlog/internal/models"
)

// Decision returns the fingerprint of everything an import derives for d
// from its file: metadata, rewritten content and outgoing links. The date
// is not covered: undated decisions carry the import time.
func Decision(d *models.Decision) string {
	h := sha256.New()
	for _, field := range []string{d.ID, d.Filename, d.Title, d.Status, string(d.Format), d.Content} {
		io.WriteString(h, field)
		h.Write([]byte{0})
	}
	for _, l := range d.Links {
		h.Write([]byte{0})
		io.WriteString(h, l.Type)
		h.Write([]byte{0})
		io.WriteString(h, l.Target)
	}
	return hex.EncodeToString(h.Sum(nil))
}
